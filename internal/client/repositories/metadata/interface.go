// Package metadata stores small key/value records of the client, such as the
// session token, outside of process memory.
package metadata

import (
	"context"
)

// Repository is a key/value store. Get returns (nil, nil) for an absent key
// and Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
