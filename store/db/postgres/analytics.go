package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/amanjaiman/habit-server/store"
)

func (d *DB) CreateAnalytics(ctx context.Context, create *store.Analytics) (*store.Analytics, error) {
	fields := []string{"user_id", "published_ts", "payload"}
	args := []any{create.UserID, create.PublishedTs, create.Payload}

	stmt := `INSERT INTO analytics (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create analytics snapshot: %w", err)
	}

	return create, nil
}

func (d *DB) ListAnalytics(ctx context.Context, find *store.FindAnalytics) ([]*store.Analytics, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}

	query := `SELECT id, user_id, published_ts, payload
		FROM analytics WHERE ` + strings.Join(where, " AND ") + ` ORDER BY published_ts`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics snapshots: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Analytics, 0)
	for rows.Next() {
		analytics := &store.Analytics{}
		if err := rows.Scan(
			&analytics.ID,
			&analytics.UserID,
			&analytics.PublishedTs,
			&analytics.Payload,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analytics snapshot: %w", err)
		}
		list = append(list, analytics)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analytics snapshots: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteAnalytics(ctx context.Context, delete *store.DeleteAnalytics) error {
	where, args := []string{}, []any{}
	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *delete.UserID)
	}
	if len(where) == 0 {
		return fmt.Errorf("delete condition is required")
	}

	stmt := `DELETE FROM analytics WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete analytics snapshots: %w", err)
	}
	return nil
}
