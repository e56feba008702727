package entity

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// DisplayDecimals is the number of fractional digits kept on transaction amounts.
const DisplayDecimals int32 = 4

type Direction string

const (
	DirectionSend     Direction = "send"
	DirectionReceive  Direction = "receive"
	DirectionSwap     Direction = "swap"
	DirectionPurchase Direction = "purchase"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// CanonicalTransaction is the ledger-agnostic view of one history record.
type CanonicalTransaction struct {
	ID                  string            `json:"id"`
	Direction           Direction         `json:"direction"`
	Amount              decimal.Decimal   `json:"amount"`
	AssetSymbol         string            `json:"assetSymbol"`
	FeeAmount           decimal.Decimal   `json:"feeAmount"`
	CounterpartyAddress string            `json:"counterpartyAddress,omitempty"`
	OccurredAt          int64             `json:"occurredAt"` // epoch milliseconds
	Status              TransactionStatus `json:"status"`
	Memo                string            `json:"memo,omitempty"`
}

// FormattedAmount renders the amount with exactly DisplayDecimals fractional digits.
func (t CanonicalTransaction) FormattedAmount() string {
	return t.Amount.StringFixed(DisplayDecimals)
}

// MarshalJSON adds displayAmount, the amount as the user sees it, next to the exact value.
func (t CanonicalTransaction) MarshalJSON() ([]byte, error) {
	type plain CanonicalTransaction
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(struct {
		plain
		DisplayAmount string `json:"displayAmount"`
	}{plain: plain(t), DisplayAmount: t.FormattedAmount()})
}
