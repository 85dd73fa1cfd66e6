package history

import (
	"context"
	"time"
)

// Repository is the contract the history backends (gorm, in-memory) satisfy.
type Repository interface {
	// Insert stores item, which must not carry an id, and returns the new id.
	Insert(ctx context.Context, item Item) (string, error)
	// List returns items newest first. An empty ownerID lists everyone's.
	List(ctx context.Context, ownerID string) ([]Item, error)
	// Update applies patch to the item with id, or returns ErrNotFound.
	Update(ctx context.Context, id string, patch Patch) error
	// Delete removes the item with id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteBefore removes items whose timestamp is before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
