package refresh

import (
	"fmt"
	"time"

	"wallet_sync/internal/domain/entity"
)

// State of an orchestrator: Idle -> Scheduled -> Fetching -> (Idle | Scheduled).
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFetching:
		return "fetching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is what a consumer displays. Snapshot and Transactions are replaced, never mutated.
type View struct {
	Key                 entity.Wallet                 `json:"key"`
	State               State                         `json:"state"`
	Snapshot            *entity.BalanceSnapshot       `json:"snapshot"`
	Transactions        []entity.CanonicalTransaction `json:"transactions"`
	BalanceLoading      bool                          `json:"balanceLoading"`
	TransactionsLoading bool                          `json:"transactionsLoading"`
	BalanceError        string                        `json:"balanceError,omitempty"`
	TransactionsError   string                        `json:"transactionsError,omitempty"`
	LastRefreshID       string                        `json:"lastRefreshId,omitempty"`
	UpdatedAt           time.Time                     `json:"updatedAt"`
}
