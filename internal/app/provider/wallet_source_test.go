package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/logger"
)

var testnetDef = entity.NetworkDefinition{Network: entity.NetworkTestnet, NativeSymbol: "TON", Decimals: 9, IndexerBaseURL: "http://fake"}

type fakeNetworks struct{}

func (fakeNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{testnetDef}
}

func (fakeNetworks) GetNetworkDefinition(n entity.Network) (entity.NetworkDefinition, bool) {
	if n == entity.NetworkTestnet {
		return testnetDef, true
	}
	return entity.NetworkDefinition{}, false
}

type fakeIndexer struct {
	account entity.RawAccountResponse
	err     error
}

func (f fakeIndexer) Account(context.Context, string) (entity.RawAccountResponse, error) {
	return f.account, f.err
}

func (f fakeIndexer) Transactions(context.Context, string, int) ([]entity.RawTransaction, error) {
	return nil, nil
}

func (f fakeIndexer) Definition() entity.NetworkDefinition { return testnetDef }

type fakeIndexers struct{ client port.IndexerClient }

func (f fakeIndexers) GetClient(entity.NetworkDefinition) (port.IndexerClient, error) {
	return f.client, nil
}

func TestIndexerWalletSource_NativeBalance(t *testing.T) {
	t.Run("formats minor units", func(t *testing.T) {
		idx := fakeIndexer{account: entity.RawAccountResponse{Balance: decimal.RequireFromString("12500000000")}}
		src := NewIndexerWalletSource(fakeNetworks{}, fakeIndexers{client: idx}, logger.NewNop())

		balance, err := src.NativeBalance(context.Background(), "EQme", entity.NetworkTestnet)
		require.NoError(t, err)
		assert.Equal(t, "12.5", balance)
	})

	t.Run("propagates indexer error", func(t *testing.T) {
		boom := errors.New("boom")
		src := NewIndexerWalletSource(fakeNetworks{}, fakeIndexers{client: fakeIndexer{err: boom}}, logger.NewNop())

		_, err := src.NativeBalance(context.Background(), "EQme", entity.NetworkTestnet)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown network", func(t *testing.T) {
		src := NewIndexerWalletSource(fakeNetworks{}, fakeIndexers{}, logger.NewNop())
		_, err := src.NativeBalance(context.Background(), "EQme", entity.NetworkMainnet)
		assert.ErrorIs(t, err, entity.ErrUnknownNetwork)
	})
}

func TestStaticWalletSource(t *testing.T) {
	src := NewStaticWalletSource()
	src.Set("EQMe", entity.NetworkTestnet, "3.25")

	balance, err := src.NativeBalance(context.Background(), "eqme", entity.NetworkTestnet)
	require.NoError(t, err)
	assert.Equal(t, "3.25", balance)

	balance, err = src.NativeBalance(context.Background(), "EQme", entity.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, "0", balance)
}

func TestWalletProvider_GetWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte("EQone mainnet\nEQtwo\n"), 0o600))

	wallets, err := NewWalletProvider(path, nil, logger.NewNop()).GetWallets()
	require.NoError(t, err)
	assert.Equal(t, []entity.Wallet{
		{Address: "EQone", Network: entity.NetworkMainnet},
		{Address: "EQtwo", Network: entity.NetworkMainnet},
	}, wallets)
}

func TestWalletProvider_DropsDisabledNetworks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte("EQone mainnet\nEQtwo testnet\n"), 0o600))

	wallets, err := NewWalletProvider(path, fakeNetworks{}, logger.NewNop()).GetWallets()
	require.NoError(t, err)
	assert.Equal(t, []entity.Wallet{{Address: "EQtwo", Network: entity.NetworkTestnet}}, wallets)
}

func TestWalletProvider_MissingFile(t *testing.T) {
	_, err := NewWalletProvider(filepath.Join(t.TempDir(), "none.txt"), nil, logger.NewNop()).GetWallets()
	assert.Error(t, err)
}
