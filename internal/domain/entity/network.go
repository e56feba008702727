package entity

import (
	"errors"
	"strings"
)

// Network identifies the ledger a wallet lives on.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// ErrUnknownNetwork is returned when a network identifier is not one of the supported ledgers.
var ErrUnknownNetwork = errors.New("unknown network")

// ParseNetwork normalizes a user supplied identifier ("Mainnet", " testnet ") into a Network.
func ParseNetwork(raw string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(raw))) {
	case NetworkMainnet:
		return NetworkMainnet, nil
	case NetworkTestnet:
		return NetworkTestnet, nil
	default:
		return "", ErrUnknownNetwork
	}
}

func (n Network) String() string {
	return string(n)
}

// NetworkDefinition holds the configuration for a specific ledger network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	Network          Network `json:"network" yaml:"network"`
	Name             string  `json:"name" yaml:"name"`
	NativeSymbol     string  `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32   `json:"decimals" yaml:"decimals"` // minor units per native coin, as a power of ten
	IndexerBaseURL   string  `json:"indexerBaseUrl" yaml:"indexerBaseUrl"`
	BlockExplorerURL string  `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}
