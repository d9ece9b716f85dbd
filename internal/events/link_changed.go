package events

import (
	"time"

	"github.com/google/uuid"
)

type LinkAction string

const (
	LinkCreated LinkAction = "created"
	LinkUpdated LinkAction = "updated"
	LinkDeleted LinkAction = "deleted"
)

// LinkChanged is emitted after a link is created, updated or deleted.
type LinkChanged struct {
	EventID    string     `json:"eventId"`
	Action     LinkAction `json:"action"`
	LinkID     string     `json:"linkId"`
	OccurredAt string     `json:"occurredAt"`
}

func NewLinkChanged(action LinkAction, linkID string, at time.Time) LinkChanged {
	return LinkChanged{
		EventID:    uuid.NewString(),
		Action:     action,
		LinkID:     linkID,
		OccurredAt: at.UTC().Format(time.RFC3339Nano),
	}
}
