package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/microfix/dashboard/internal/infrastructure/db"
	"github.com/microfix/dashboard/internal/processing/links"
)

// Tags are kept as a JSON array in a TEXT column.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS links (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		url         TEXT NOT NULL,
		description TEXT,
		"imageUrl"  TEXT,
		tags        TEXT NOT NULL DEFAULT '[]',
		"createdAt" INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS links_created_at_idx ON links ("createdAt" DESC)`,
}

const linkColumns = `id, title, url, COALESCE(description, ''), COALESCE("imageUrl", ''), tags, "createdAt"`

type LinksRepository struct {
	db    *sql.DB
	newID func() string
}

func NewLinksRepository(s *db.SQLite) (*LinksRepository, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("sqlite database is nil")
	}
	return &LinksRepository{db: s.DB, newID: uuid.NewString}, nil
}

func (r *LinksRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func (r *LinksRepository) List(ctx context.Context) ([]links.Link, error) {
	// rowid breaks createdAt ties in insertion order.
	rows, err := r.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM links ORDER BY "createdAt" DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	out := make([]links.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}
	link.ID = r.newID()
	tags, err := encodeTags(link.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO links (id, title, url, description, "imageUrl", tags, "createdAt") VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.Title, link.URL, link.Description, link.ImageURL, tags, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting link: %w", err)
	}
	return nil
}

func (r *LinksRepository) Update(ctx context.Context, id string, in links.UpdateLinkInput) (*links.Link, error) {
	var tags any
	if in.Tags != nil {
		encoded, err := encodeTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		tags = encoded
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE links SET
			title       = COALESCE(?, title),
			url         = COALESCE(?, url),
			description = COALESCE(?, description),
			"imageUrl"  = COALESCE(?, "imageUrl"),
			tags        = COALESCE(?, tags)
		WHERE id = ?
		RETURNING `+linkColumns,
		nullable(in.Title), nullable(in.URL), nullable(in.Description), nullable(in.ImageURL), tags, id,
	)

	l, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LinksRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(s scanner) (links.Link, error) {
	var (
		l    links.Link
		tags string
	)
	if err := s.Scan(&l.ID, &l.Title, &l.URL, &l.Description, &l.ImageURL, &tags, &l.CreatedAt); err != nil {
		return links.Link{}, err
	}
	if err := json.Unmarshal([]byte(tags), &l.Tags); err != nil {
		return links.Link{}, fmt.Errorf("decoding tags of %s: %w", l.ID, err)
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	return l, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(raw), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
