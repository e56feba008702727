package provider

import (
	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/walletloader"
)

type walletProviderImpl struct {
	walletFilePath string
	networks       port.NetworkDefinitionProvider
	logger         port.Logger
}

// NewWalletProvider creates a WalletProvider reading the watched wallet file. When networks
// is set, wallets on networks without a definition are dropped.
func NewWalletProvider(filePath string, networks port.NetworkDefinitionProvider, logger port.Logger) port.WalletProvider {
	return &walletProviderImpl{walletFilePath: filePath, networks: networks, logger: logger.With("path", filePath)}
}

func (p *walletProviderImpl) GetWallets() ([]entity.Wallet, error) {
	wallets, err := walletloader.LoadWallets(p.walletFilePath, p.logger)
	if err != nil {
		p.logger.Error("Failed to load wallets", "error", err)
		return nil, err
	}
	if p.networks == nil {
		p.logger.Info("Wallets loaded", "count", len(wallets))
		return wallets, nil
	}

	enabled := wallets[:0]
	for _, w := range wallets {
		if _, ok := p.networks.GetNetworkDefinition(w.Network); !ok {
			p.logger.Warn("Skipping wallet on disabled network", "address", w.Address, "network", w.Network)
			continue
		}
		enabled = append(enabled, w)
	}
	p.logger.Info("Wallets loaded", "count", len(enabled), "skipped", len(wallets)-len(enabled))
	return enabled, nil
}
