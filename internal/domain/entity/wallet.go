package entity

import "fmt"

// Wallet is an (address, network) pair; it is the identity of everything the sync layer refreshes.
type Wallet struct {
	Address string  `json:"address" yaml:"address"`
	Network Network `json:"network" yaml:"network"`
}

// ID returns a stable identifier suitable for consumer registries.
func (w Wallet) ID() string {
	return fmt.Sprintf("%s:%s", w.Network, w.Address)
}
