package entity

import "github.com/shopspring/decimal"

// RawTransactionsResponse is the indexer answer for GET /accounts/{address}/transactions.
type RawTransactionsResponse struct {
	Transactions []RawTransaction `json:"transactions"`
}

// RawTransaction is an indexer record exactly as received. Values are in minor units.
type RawTransaction struct {
	Hash      string           `json:"hash"`
	Lt        decimal.Decimal  `json:"lt"`
	Utime     int64            `json:"utime"`
	Success   bool             `json:"success"`
	TotalFees *decimal.Decimal `json:"total_fees,omitempty"`
	InMsg     *RawMessage      `json:"in_msg,omitempty"`
	OutMsgs   []RawMessage     `json:"out_msgs"`
}

// RawMessage is one leg of a raw transaction.
type RawMessage struct {
	Value         decimal.Decimal `json:"value"`
	Source        *RawAccount     `json:"source,omitempty"`
	Destination   *RawAccount     `json:"destination,omitempty"`
	DecodedOpName string          `json:"decoded_op_name,omitempty"`
	DecodedBody   *RawDecodedBody `json:"decoded_body,omitempty"`
}

type RawAccount struct {
	Address string `json:"address"`
}

type RawDecodedBody struct {
	Text string `json:"text,omitempty"`
}

// Text returns the decoded comment of the message, if any.
func (m *RawMessage) Text() string {
	if m == nil || m.DecodedBody == nil {
		return ""
	}
	return m.DecodedBody.Text
}

// RawAccountResponse is the indexer answer for GET /accounts/{address}.
type RawAccountResponse struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
	Status  string          `json:"status,omitempty"`
}
