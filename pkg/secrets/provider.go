package secrets

import "context"

// Provider defines a generic secrets store interface.
// Concrete implementations (AWS, GCP, etc.) can satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by key/path and returns a key-value map.
	GetSecret(ctx context.Context, key string) (map[string]string, error)

	// PutSecret replaces the value of an existing secret with the given
	// key-value map. Used to persist rotated credentials.
	PutSecret(ctx context.Context, key string, values map[string]string) error
}
