package walletloader

import (
	"fmt"
	"strings"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/utils"
)

// LoadWallets reads "address [network]" lines from filePath. The network defaults to mainnet;
// lines with an unknown network or more than two fields are skipped.
func LoadWallets(filePath string, log port.Logger) ([]entity.Wallet, error) {
	lines, err := utils.ReadDataLines(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet file %s: %w", filePath, err)
	}

	seen := make(map[string]struct{}, len(lines))
	wallets := make([]entity.Wallet, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line.Text)
		if len(fields) > 2 {
			log.Info("Skipping invalid wallet line", "file", filePath, "line_number", line.Number, "line", line.Text)
			continue
		}

		network := entity.NetworkMainnet
		if len(fields) == 2 {
			parsed, err := entity.ParseNetwork(fields[1])
			if err != nil {
				log.Info("Skipping wallet with unknown network", "file", filePath, "line_number", line.Number, "network", fields[1])
				continue
			}
			network = parsed
		}

		wallet := entity.Wallet{Address: fields[0], Network: network}
		if _, dup := seen[wallet.ID()]; dup {
			continue
		}
		seen[wallet.ID()] = struct{}{}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}
