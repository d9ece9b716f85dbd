package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/microfix/dashboard/internal/infrastructure/db"
	"github.com/microfix/dashboard/internal/processing/links"
)

// gen_random_uuid is built in from PostgreSQL 13 on.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS links (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT,
	"imageUrl"  TEXT,
	tags        TEXT[],
	"createdAt" BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS links_created_at_idx ON links ("createdAt" DESC);
`

const linkColumns = `id::text, title, url, COALESCE(description, ''), COALESCE("imageUrl", ''), COALESCE(tags, '{}'), "createdAt"`

const (
	listLinksSQL = `SELECT ` + linkColumns + ` FROM links ORDER BY "createdAt" DESC`

	insertLinkSQL = `
INSERT INTO links (title, url, description, "imageUrl", tags, "createdAt")
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text`

	updateLinkSQL = `
UPDATE links SET
	title       = COALESCE($2, title),
	url         = COALESCE($3, url),
	description = COALESCE($4, description),
	"imageUrl"  = COALESCE($5, "imageUrl"),
	tags        = COALESCE($6::text[], tags)
WHERE id = $1
RETURNING ` + linkColumns

	deleteLinkSQL = `DELETE FROM links WHERE id = $1`
)

type LinksRepository struct {
	pool *pgxpool.Pool
}

func NewLinksRepository(p *db.Postgres) (*LinksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &LinksRepository{pool: p.Pool}, nil
}

func (r *LinksRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create links schema: %w", err)
	}
	return nil
}

func (r *LinksRepository) List(ctx context.Context) ([]links.Link, error) {
	rows, err := r.pool.Query(ctx, listLinksSQL)
	if err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (links.Link, error) {
		return scanLink(row)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	return r.pool.QueryRow(ctx, insertLinkSQL,
		link.Title, link.URL, link.Description, link.ImageURL, nonNilTags(link.Tags), link.CreatedAt,
	).Scan(&link.ID)
}

func (r *LinksRepository) Update(ctx context.Context, id string, in links.UpdateLinkInput) (*links.Link, error) {
	var tags any
	if in.Tags != nil {
		tags = nonNilTags(*in.Tags)
	}

	row := r.pool.QueryRow(ctx, updateLinkSQL, id, in.Title, in.URL, in.Description, in.ImageURL, tags)
	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *LinksRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, deleteLinkSQL, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanLink(row pgx.Row) (links.Link, error) {
	var l links.Link
	err := row.Scan(&l.ID, &l.Title, &l.URL, &l.Description, &l.ImageURL, &l.Tags, &l.CreatedAt)
	return l, err
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
