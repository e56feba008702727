package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/logger"
)

func TestNetworkDefinitionProvider(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := NewNetworkDefinitionProvider(logger.NewNop(), nil)

		defs := p.GetAllNetworkDefinitions()
		require.Len(t, defs, 2)
		assert.Equal(t, entity.NetworkMainnet, defs[0].Network)

		def, ok := p.GetNetworkDefinition(entity.NetworkTestnet)
		require.True(t, ok)
		assert.EqualValues(t, 9, def.Decimals)
		assert.Equal(t, "TON", def.NativeSymbol)
	})

	t.Run("overrides and disables", func(t *testing.T) {
		p := NewNetworkDefinitionProvider(logger.NewNop(), map[string]string{
			"mainnet": "http://localhost:9000/",
			"testnet": "",
			"solana":  "http://ignored",
		})

		def, ok := p.GetNetworkDefinition(entity.NetworkMainnet)
		require.True(t, ok)
		assert.Equal(t, "http://localhost:9000", def.IndexerBaseURL)

		_, ok = p.GetNetworkDefinition(entity.NetworkTestnet)
		assert.False(t, ok)
	})

	t.Run("nil provider", func(t *testing.T) {
		var p *NetworkDefinitionProvider
		assert.Empty(t, p.GetAllNetworkDefinitions())
		_, ok := p.GetNetworkDefinition(entity.NetworkMainnet)
		assert.False(t, ok)
	})
}
