package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/utils"
)

// IndexerWalletSource reads native balances from the network indexer.
type IndexerWalletSource struct {
	networks port.NetworkDefinitionProvider
	indexers port.IndexerClientProvider
	logger   port.Logger
}

func NewIndexerWalletSource(networks port.NetworkDefinitionProvider, indexers port.IndexerClientProvider, l port.Logger) *IndexerWalletSource {
	return &IndexerWalletSource{networks: networks, indexers: indexers, logger: l}
}

// NativeBalance returns the balance of address in major units, e.g. "12.5".
func (s *IndexerWalletSource) NativeBalance(ctx context.Context, address string, network entity.Network) (string, error) {
	netDef, ok := s.networks.GetNetworkDefinition(network)
	if !ok {
		return "", errors.Wrapf(entity.ErrUnknownNetwork, "network %q", network)
	}
	indexer, err := s.indexers.GetClient(netDef)
	if err != nil {
		return "", errors.Wrapf(err, "indexer for %s", network)
	}

	account, err := indexer.Account(ctx, address)
	if err != nil {
		return "", errors.Wrapf(err, "read account %s", address)
	}

	balance := utils.FormatMinorUnits(account.Balance, netDef.Decimals)
	s.logger.Debug("Native balance read", "address", address, "network", network, "balance", balance)
	return balance, nil
}

// StaticWalletSource serves balances from memory. Unknown wallets have a zero balance.
type StaticWalletSource struct {
	mu       sync.RWMutex
	balances map[string]string
}

func NewStaticWalletSource() *StaticWalletSource {
	return &StaticWalletSource{balances: make(map[string]string)}
}

func staticKey(address string, network entity.Network) string {
	return fmt.Sprintf("%s/%s", network, strings.ToLower(address))
}

// Set stores the major-unit balance of a wallet.
func (s *StaticWalletSource) Set(address string, network entity.Network, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[staticKey(address, network)] = balance
}

func (s *StaticWalletSource) NativeBalance(_ context.Context, address string, network entity.Network) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if balance, ok := s.balances[staticKey(address, network)]; ok {
		return balance, nil
	}
	return "0", nil
}
