// Package redis implements the remote document store: top-level collections
// for operator-curated categories and links, per-viewer sub-collections for
// user content, one profile document per viewer, and per-bookmark like
// records. Documents are stored as JSON blobs with sets tracking collection
// membership; batch operations ride on pipelines.
package redis

import (
	"github.com/redis/go-redis/v9"
)

// Store handles all document operations against Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new document store on top of an established client.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
