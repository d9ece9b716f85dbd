package links

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/events"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
	"github.com/microfix/dashboard/internal/infrastructure/telemetry"
)

type Service struct {
	linkRepo  LinkRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewService wires the service. A nil publisher drops change events.
func NewService(linkRepo LinkRepository, publisher EventPublisher) *Service {
	return &Service{
		linkRepo:  linkRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListLinks returns every link, newest first.
func (s *Service) ListLinks(ctx context.Context) ([]Link, error) {
	ctx, span := telemetry.StartSpan(ctx, "links.ListLinks")
	defer span.End()

	links, err := s.linkRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range links {
		if links[i].Tags == nil {
			links[i].Tags = []string{}
		}
	}
	span.SetAttributes(attribute.Int("links.count", len(links)))
	return links, nil
}

func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*Link, error) {
	ctx, span := telemetry.StartSpan(ctx, "links.CreateLink")
	defer span.End()

	title := strings.TrimSpace(in.Title)
	rawURL := strings.TrimSpace(in.URL)
	if title == "" || rawURL == "" {
		return nil, ErrInvalidInput
	}

	link := &Link{
		Title:       title,
		URL:         rawURL,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Tags:        append([]string{}, in.Tags...),
		CreatedAt:   in.CreatedAt,
	}
	if link.CreatedAt <= 0 {
		link.CreatedAt = s.now().UnixMilli()
	}

	if err := s.linkRepo.Insert(ctx, link); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("links.id", link.ID))
	s.publish(ctx, events.LinkCreated, link.ID)
	return link, nil
}

func (s *Service) UpdateLink(ctx context.Context, id string, in UpdateLinkInput) (*Link, error) {
	ctx, span := telemetry.StartSpan(ctx, "links.UpdateLink")
	defer span.End()
	span.SetAttributes(attribute.String("links.id", id))

	if !validID(id) {
		return nil, ErrNotFound
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be blank", ErrInvalidInput)
	}
	if in.URL != nil && strings.TrimSpace(*in.URL) == "" {
		return nil, fmt.Errorf("%w: url must not be blank", ErrInvalidInput)
	}

	link, err := s.linkRepo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if link.Tags == nil {
		link.Tags = []string{}
	}

	s.publish(ctx, events.LinkUpdated, id)
	return link, nil
}

func (s *Service) DeleteLink(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "links.DeleteLink")
	defer span.End()
	span.SetAttributes(attribute.String("links.id", id))

	if !validID(id) {
		return ErrNotFound
	}

	deleted, err := s.linkRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.publish(ctx, events.LinkDeleted, id)
	return nil
}

// SetupSchema creates the links storage if it does not exist yet. Safe to run
// repeatedly.
func (s *Service) SetupSchema(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "links.SetupSchema")
	defer span.End()

	return s.linkRepo.EnsureSchema(ctx)
}

func (s *Service) publish(ctx context.Context, action events.LinkAction, id string) {
	if s.publisher == nil {
		return
	}
	evt := events.NewLinkChanged(action, id, s.now())
	if err := s.publisher.PublishLinkChanged(ctx, evt); err != nil {
		logger.Warn("failed to publish link change",
			zap.Error(err),
			zap.String("action", string(action)),
			zap.String("link_id", id),
		)
	}
}

// Ids are uuids in every store; anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
