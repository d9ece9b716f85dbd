package collection

import "context"

// Backend is the durable side of the collection. Implementations assign IDs
// on Create and report unknown IDs with an error matching ErrNotFound.
type Backend interface {
	LoadAll(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, c Candidate) (Item, error)
	Replace(ctx context.Context, id string, p Patch) (Item, error)
	Remove(ctx context.Context, id string) error
}
