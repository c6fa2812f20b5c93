// Package postgres implements the link and click event repositories on top of
// PostgreSQL using sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/ziplink/internal/entity"

	pg "github.com/vadimbarashkov/ziplink/pkg/postgres"
)

type linkDB struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	URL         string     `db:"url"`
	Slug        string     `db:"slug"`
	Description *string    `db:"description"`
	IsActive    bool       `db:"is_active"`
	Clicks      int64      `db:"clicks"`
	IsCustom    bool       `db:"is_custom"`
	UserID      *string    `db:"user_id"`
	Favicon     *string    `db:"favicon"`
	ExpiresAt   *time.Time `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (l *linkDB) toEntity() *entity.Link {
	return &entity.Link{
		ID:          l.ID,
		Title:       l.Title,
		URL:         l.URL,
		Slug:        l.Slug,
		Description: l.Description,
		IsActive:    l.IsActive,
		Clicks:      l.Clicks,
		IsCustom:    l.IsCustom,
		UserID:      l.UserID,
		Favicon:     l.Favicon,
		ExpiresAt:   l.ExpiresAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toEntities(rows []linkDB) []entity.Link {
	links := make([]entity.Link, 0, len(rows))
	for i := range rows {
		links = append(links, *rows[i].toEntity())
	}
	return links
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Save(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.Save"
	const query = `INSERT INTO links(id, title, url, slug, description, is_custom, user_id, favicon, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING *`

	var saved linkDB

	err := r.db.GetContext(ctx, &saved, query,
		uuid.NewString(),
		link.Title,
		link.URL,
		link.Slug,
		link.Description,
		link.IsCustom,
		link.UserID,
		link.Favicon,
		link.ExpiresAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into links table: %w", op, err)
	}

	return saved.toEntity(), nil
}

func (r *LinkRepository) RetrieveByID(ctx context.Context, id string) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveByID"
	const query = `SELECT * FROM links WHERE id = $1`

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) RetrieveActiveBySlug(ctx context.Context, slug string) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveActiveBySlug"
	const query = `SELECT * FROM links WHERE slug = $1 AND is_active`

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.ListByOwner"
	const query = `SELECT * FROM links WHERE user_id = $1 ORDER BY created_at DESC`

	var rows []linkDB

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	return toEntities(rows), nil
}

func (r *LinkRepository) ListGuest(ctx context.Context) ([]entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.ListGuest"
	const query = `SELECT * FROM links WHERE user_id IS NULL ORDER BY created_at DESC`

	var rows []linkDB

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	return toEntities(rows), nil
}

func (r *LinkRepository) OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error) {
	const op = "adapter.repository.postgres.LinkRepository.OwnerStats"
	const query = `SELECT COUNT(*) AS total_links, COALESCE(SUM(clicks), 0) AS total_clicks
		FROM links WHERE user_id = $1`

	var stats struct {
		TotalLinks  int64 `db:"total_links"`
		TotalClicks int64 `db:"total_clicks"`
	}

	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to aggregate links table: %w", op, err)
	}

	return &entity.OwnerStats{
		TotalLinks:  stats.TotalLinks,
		TotalClicks: stats.TotalClicks,
	}, nil
}

func (r *LinkRepository) Update(ctx context.Context, id string, upd entity.LinkUpdate) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.Update"
	const query = `UPDATE links SET
		title = COALESCE($2, title),
		url = COALESCE($3, url),
		description = COALESCE($4, description),
		is_active = COALESCE($5, is_active),
		favicon = COALESCE($6, favicon),
		updated_at = NOW()
		WHERE id = $1 RETURNING *`

	var link linkDB

	err := r.db.GetContext(ctx, &link, query, id, upd.Title, upd.URL, upd.Description, upd.IsActive, upd.Favicon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) Remove(ctx context.Context, id string) error {
	const op = "adapter.repository.postgres.LinkRepository.Remove"
	const query = `DELETE FROM links WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete from links table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return nil
}
