// Package store provides the key-value backends that hold the whole-value
// leads and audits mappings.
package store

import (
	"context"
)

// Top-level keys used by the gateways.
const (
	KeyLeads  = "leads"
	KeyAudits = "audits"
)

// KV is an asynchronous get/set key-value service. Values are opaque JSON
// documents that are always read and written whole.
type KV interface {
	// Get returns the stored value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
