package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// WalletProvider defines the interface for fetching the list of watched wallets.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}

// WalletSource reads the native balance of a wallet, in major units, as displayed to the user.
type WalletSource interface {
	NativeBalance(ctx context.Context, address string, network entity.Network) (string, error)
}
