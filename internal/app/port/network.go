package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// IndexerClient talks to the ledger indexer of a single network.
type IndexerClient interface {
	// Account returns the on-chain state of address, balance in minor units.
	Account(ctx context.Context, address string) (entity.RawAccountResponse, error)

	// Transactions returns up to limit raw history records of address, newest first.
	Transactions(ctx context.Context, address string, limit int) ([]entity.RawTransaction, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinition возвращает определение и true, если найдено, иначе false.
	GetNetworkDefinition(network entity.Network) (entity.NetworkDefinition, bool)
}

// IndexerClientProvider hands out one cached indexer client per network.
type IndexerClientProvider interface {
	GetClient(def entity.NetworkDefinition) (IndexerClient, error)
}
