package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// BalanceAggregator produces balance snapshots for one consumer.
type BalanceAggregator interface {
	GetSnapshot(ctx context.Context, req entity.BalanceRequest) (entity.BalanceSnapshot, error)
}

// TransactionNormalizer fetches and normalizes history for one consumer.
type TransactionNormalizer interface {
	FetchTransactions(ctx context.Context, address string, network entity.Network, limit int) ([]entity.CanonicalTransaction, error)
}

// SnapshotJournal keeps an append-only log of computed snapshots.
type SnapshotJournal interface {
	Save(snapshot entity.BalanceSnapshot) error
	SnapshotsAfter(index uint64) ([]entity.SnapshotRecord, error)
	// WalletSnapshotsAfter is SnapshotsAfter restricted to the records of one wallet.
	WalletSnapshotsAfter(wallet entity.Wallet, index uint64) ([]entity.SnapshotRecord, error)
}
