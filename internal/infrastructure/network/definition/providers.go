package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[entity.Network]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Mainnet = entity.NetworkDefinition{
		Network:          entity.NetworkMainnet,
		Name:             "TON Mainnet",
		NativeSymbol:     "TON",
		Decimals:         9,
		IndexerBaseURL:   "https://tonapi.io/v2",
		BlockExplorerURL: "https://tonviewer.com",
	}
	Testnet = entity.NetworkDefinition{
		Network:          entity.NetworkTestnet,
		Name:             "TON Testnet",
		NativeSymbol:     "TON",
		Decimals:         9,
		IndexerBaseURL:   "https://testnet.tonapi.io/v2",
		BlockExplorerURL: "https://testnet.tonviewer.com",
	}

	allKnownDefinitions = map[entity.Network]entity.NetworkDefinition{
		entity.NetworkMainnet: Mainnet,
		entity.NetworkTestnet: Testnet,
	}
)

// NewNetworkDefinitionProvider activates every known network. indexerURLs overrides
// the built-in indexer base URL per network; an explicit empty value disables the network.
func NewNetworkDefinitionProvider(log port.Logger, indexerURLs map[string]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    make(map[entity.Network]entity.NetworkDefinition, len(allKnownDefinitions)),
		activeNetworkDefs: make([]entity.NetworkDefinition, 0, len(allKnownDefinitions)),
	}
	for network, def := range allKnownDefinitions {
		p.allNetworkDefs[network] = def
	}

	for name, baseURL := range indexerURLs {
		network, err := entity.ParseNetwork(name)
		if err != nil {
			p.logger.Warn(fmt.Sprintf("Indexer configured for unknown network '%s'. Skipping.", name))
			continue
		}
		def := p.allNetworkDefs[network]
		def.IndexerBaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		p.allNetworkDefs[network] = def
	}

	for _, def := range p.allNetworkDefs {
		if def.IndexerBaseURL == "" {
			p.logger.Warn("Network has no indexer URL and stays inactive", "network", def.Network)
			continue
		}
		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
	}
	sort.Slice(p.activeNetworkDefs, func(i, j int) bool {
		return p.activeNetworkDefs[i].Network < p.activeNetworkDefs[j].Network
	})

	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d", len(p.activeNetworkDefs)))
	for _, def := range p.activeNetworkDefs {
		p.logger.Debug("Active network", "network", def.Network, "indexer", def.IndexerBaseURL)
	}
	return p
}

// GetAllNetworkDefinitions returns the list of active network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinition returns the definition of network if it is active.
func (p *NetworkDefinitionProvider) GetNetworkDefinition(network entity.Network) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.activeNetworkDefs {
		if def.Network == network {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
