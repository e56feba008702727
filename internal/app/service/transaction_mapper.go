package service

import (
	"github.com/shopspring/decimal"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/utils"
)

// MapRawTransaction converts an indexer record into a CanonicalTransaction.
//
// Direction rules:
//   - any outgoing leg: send, amount and counterparty from the first outgoing leg
//   - otherwise an incoming leg with positive value: receive, from the incoming leg
//   - otherwise receive with zero amount and no counterparty
func MapRawTransaction(raw entity.RawTransaction, netDef entity.NetworkDefinition) entity.CanonicalTransaction {
	tx := entity.CanonicalTransaction{
		ID:          raw.Hash,
		Direction:   entity.DirectionReceive,
		Amount:      decimal.Zero,
		AssetSymbol: netDef.NativeSymbol,
		FeeAmount:   decimal.Zero,
		OccurredAt:  raw.Utime * 1000,
		Status:      entity.StatusFailed,
		Memo:        memoOf(raw),
	}
	if tx.ID == "" {
		tx.ID = raw.Lt.String()
	}
	if raw.Success {
		tx.Status = entity.StatusCompleted
	}
	if raw.TotalFees != nil {
		tx.FeeAmount = utils.ShiftMinorUnits(*raw.TotalFees, netDef.Decimals)
	}

	switch {
	case len(raw.OutMsgs) > 0:
		out := raw.OutMsgs[0]
		tx.Direction = entity.DirectionSend
		tx.Amount = displayAmount(out.Value, netDef.Decimals)
		if out.Destination != nil {
			tx.CounterpartyAddress = out.Destination.Address
		}
	case raw.InMsg != nil && raw.InMsg.Value.IsPositive():
		tx.Amount = displayAmount(raw.InMsg.Value, netDef.Decimals)
		if raw.InMsg.Source != nil {
			tx.CounterpartyAddress = raw.InMsg.Source.Address
		}
	}
	return tx
}

func displayAmount(minor decimal.Decimal, decimals int32) decimal.Decimal {
	return utils.ShiftMinorUnits(minor, decimals).Abs().Round(entity.DisplayDecimals)
}

// memoOf prefers the incoming leg's comment over any outgoing one.
func memoOf(raw entity.RawTransaction) string {
	if text := raw.InMsg.Text(); text != "" {
		return text
	}
	for i := range raw.OutMsgs {
		if text := raw.OutMsgs[i].Text(); text != "" {
			return text
		}
	}
	return ""
}
