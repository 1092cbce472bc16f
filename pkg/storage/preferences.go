package storage

import (
	"context"
	"strings"
)

// Preference names shared by the wallet service and the stores.
const (
	KeyLastBalance           = "last_balance"
	KeyRequiredConfirmations = "required_confirmations"
	KeyNetwork               = "network"
)

// PreferencesStore is opaque key/value I/O. Get returns ErrNotFound for missing keys.
type PreferencesStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// NetworkKey scopes a preference name to a network, so wallets on different networks
// sharing one store never see each other's values.
func NetworkKey(name, network string) string {
	if network == "" {
		return name
	}
	return name + "_" + strings.ToLower(network)
}

// Scoped wraps a store so every key is scoped to one network.
type Scoped struct {
	Store   PreferencesStore
	Network string
}

// Make sure we conform to the interface
var _ PreferencesStore = Scoped{}

func (s Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.Store.Get(ctx, NetworkKey(key, s.Network))
}

func (s Scoped) Set(ctx context.Context, key, value string) error {
	return s.Store.Set(ctx, NetworkKey(key, s.Network), value)
}

func (s Scoped) Remove(ctx context.Context, key string) error {
	return s.Store.Remove(ctx, NetworkKey(key, s.Network))
}
