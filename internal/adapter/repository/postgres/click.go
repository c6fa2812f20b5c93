package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/ziplink/internal/entity"

	pg "github.com/vadimbarashkov/ziplink/pkg/postgres"
)

// ErrUnknownDimension is returned when a rollup is requested for a dimension without a query.
var ErrUnknownDimension = errors.New("unknown dimension")

// Every rollup groups in the database, so the result size is bounded by the
// number of buckets rather than the number of clicks.
var rollupQueries = map[entity.Dimension]string{
	entity.DimensionDay: `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS bucket, COUNT(*) AS count
		FROM click_events WHERE link_id = $1 GROUP BY bucket`,
	entity.DimensionMonth: `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS bucket, COUNT(*) AS count
		FROM click_events WHERE link_id = $1 GROUP BY bucket`,
	entity.DimensionReferrer: `SELECT COALESCE(referrer, '') AS bucket, COUNT(*) AS count
		FROM click_events WHERE link_id = $1 GROUP BY bucket`,
	entity.DimensionCountry: `SELECT country AS bucket, COUNT(*) AS count
		FROM click_events WHERE link_id = $1 AND country NOT IN ('', 'Unknown') GROUP BY bucket`,
}

type bucketDB struct {
	Bucket string `db:"bucket"`
	Count  int64  `db:"count"`
}

type ClickRepository struct {
	db *sqlx.DB
}

func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// Record increments the click counter of an active link and stores the click
// event in one transaction. It returns the link as it is after the increment.
func (r *ClickRepository) Record(ctx context.Context, click entity.ClickEvent) (*entity.Link, error) {
	const op = "adapter.repository.postgres.ClickRepository.Record"
	const incrementQuery = `UPDATE links SET clicks = clicks + 1 WHERE id = $1 AND is_active RETURNING *`
	const insertQuery = `INSERT INTO click_events(link_id, referrer, ip, browser, os, device_type, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var link linkDB

	err := pg.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &link, incrementQuery, click.LinkID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrLinkNotFound
			}

			return fmt.Errorf("failed to increment link clicks: %w", err)
		}

		_, err := tx.ExecContext(ctx, insertQuery,
			click.LinkID,
			click.Referrer,
			click.IP,
			click.Browser,
			click.OS,
			click.DeviceType,
			click.Country,
		)
		if err != nil {
			return fmt.Errorf("failed to insert into click_events table: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link.toEntity(), nil
}

// Rollup counts the clicks of a link per bucket of the given dimension.
func (r *ClickRepository) Rollup(ctx context.Context, linkID string, dim entity.Dimension) ([]entity.BucketCount, error) {
	const op = "adapter.repository.postgres.ClickRepository.Rollup"

	query, ok := rollupQueries[dim]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDimension, dim)
	}

	var rows []bucketDB

	if err := r.db.SelectContext(ctx, &rows, query, linkID); err != nil {
		return nil, fmt.Errorf("%s: failed to group click_events table: %w", op, err)
	}

	buckets := make([]entity.BucketCount, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, entity.BucketCount{Key: row.Bucket, Count: row.Count})
	}

	return buckets, nil
}

// PurgeBefore deletes click events created before t and returns how many were removed.
func (r *ClickRepository) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	const op = "adapter.repository.postgres.ClickRepository.PurgeBefore"
	const query = `DELETE FROM click_events WHERE created_at < $1`

	res, err := r.db.ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete from click_events table: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return n, nil
}
