package links

import (
	"context"
	"errors"

	"github.com/microfix/dashboard/internal/events"
)

var (
	ErrNotFound     = errors.New("link not found")
	ErrInvalidInput = errors.New("invalid link input")
)

// LinkRepository stores links. Insert assigns link.ID.
// Update returns ErrNotFound for unknown ids.
type LinkRepository interface {
	List(ctx context.Context) ([]Link, error)
	Insert(ctx context.Context, link *Link) error
	Update(ctx context.Context, id string, in UpdateLinkInput) (*Link, error)
	Delete(ctx context.Context, id string) (bool, error)
	EnsureSchema(ctx context.Context) error
}

type EventPublisher interface {
	PublishLinkChanged(ctx context.Context, evt events.LinkChanged) error
}
