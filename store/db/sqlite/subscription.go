package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/amanjaiman/habit-server/store"
)

func (d *DB) CreateSubscription(ctx context.Context, create *store.Subscription) (*store.Subscription, error) {
	fields := []string{"user_id", "customer_id", "status", "current_period_start_ts", "current_period_end_ts", "cancel_at_period_end", "created_ts"}
	args := []any{
		create.UserID,
		create.CustomerID,
		create.Status,
		create.CurrentPeriodStartTs,
		create.CurrentPeriodEndTs,
		create.CancelAtPeriodEnd,
		create.CreatedTs,
	}

	stmt := `INSERT INTO subscription (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return create, nil
}

func (d *DB) ListSubscriptions(ctx context.Context, find *store.FindSubscription) ([]*store.Subscription, error) {
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
	if find.CustomerID != nil {
		where, args = append(where, "customer_id = "+placeholder(len(args)+1)), append(args, *find.CustomerID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *find.Status)
	}

	query := `SELECT id, user_id, customer_id, status, current_period_start_ts, current_period_end_ts, cancel_at_period_end, created_ts
		FROM subscription WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Subscription, 0)
	for rows.Next() {
		subscription := &store.Subscription{}
		if err := rows.Scan(
			&subscription.ID,
			&subscription.UserID,
			&subscription.CustomerID,
			&subscription.Status,
			&subscription.CurrentPeriodStartTs,
			&subscription.CurrentPeriodEndTs,
			&subscription.CancelAtPeriodEnd,
			&subscription.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		list = append(list, subscription)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateSubscription(ctx context.Context, update *store.UpdateSubscription) (*store.Subscription, error) {
	set, args := []string{}, []any{}
	if update.Status != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *update.Status)
	}
	if update.CurrentPeriodStartTs != nil {
		set, args = append(set, "current_period_start_ts = "+placeholder(len(args)+1)), append(args, *update.CurrentPeriodStartTs)
	}
	if update.CurrentPeriodEndTs != nil {
		set, args = append(set, "current_period_end_ts = "+placeholder(len(args)+1)), append(args, *update.CurrentPeriodEndTs)
	}
	if update.CancelAtPeriodEnd != nil {
		set, args = append(set, "cancel_at_period_end = "+placeholder(len(args)+1)), append(args, *update.CancelAtPeriodEnd)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	stmt := `UPDATE subscription SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)+1)
	args = append(args, update.ID)
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	subscriptions, err := d.ListSubscriptions(ctx, &store.FindSubscription{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return nil, fmt.Errorf("subscription %d not found", update.ID)
	}
	return subscriptions[0], nil
}

func (d *DB) DeleteSubscription(ctx context.Context, delete *store.DeleteSubscription) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM subscription WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
