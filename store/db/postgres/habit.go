package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amanjaiman/habit-server/store"
)

func (d *DB) CreateHabit(ctx context.Context, create *store.Habit) (*store.Habit, error) {
	completions, err := json.Marshal(create.Completions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completions: %w", err)
	}
	var config any
	if create.Config != nil {
		buf, err := json.Marshal(create.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal habit config: %w", err)
		}
		config = string(buf)
	}

	fields := []string{"uid", "creator_id", "name", "category", "type", "config", "completions", "created_ts"}
	args := []any{create.UID, create.CreatorID, create.Name, create.Category, string(create.Type), config, string(completions), create.CreatedTs}

	stmt := `INSERT INTO habit (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return create, nil
}

func (d *DB) ListHabits(ctx context.Context, find *store.FindHabit) ([]*store.Habit, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}

	query := `SELECT id, uid, creator_id, name, category, type, config, completions, created_ts
		FROM habit WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Habit, 0)
	for rows.Next() {
		habit := &store.Habit{}
		var habitType string
		var config sql.NullString
		var completions string
		if err := rows.Scan(
			&habit.ID,
			&habit.UID,
			&habit.CreatorID,
			&habit.Name,
			&habit.Category,
			&habitType,
			&config,
			&completions,
			&habit.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habit.Type = store.HabitType(habitType)
		if config.Valid && config.String != "" {
			habit.Config = &store.HabitConfig{}
			if err := json.Unmarshal([]byte(config.String), habit.Config); err != nil {
				return nil, fmt.Errorf("failed to unmarshal habit config: %w", err)
			}
		}
		habit.Completions = map[string]store.CompletionValue{}
		if completions != "" {
			if err := json.Unmarshal([]byte(completions), &habit.Completions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal completions: %w", err)
			}
		}
		list = append(list, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateHabit(ctx context.Context, update *store.UpdateHabit) (*store.Habit, error) {
	set, args := []string{}, []any{}
	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Category != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, *update.Category)
	}
	if update.Config != nil {
		buf, err := json.Marshal(update.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal habit config: %w", err)
		}
		set, args = append(set, "config = "+placeholder(len(args)+1)), append(args, string(buf))
	}
	if update.Completions != nil {
		buf, err := json.Marshal(update.Completions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal completions: %w", err)
		}
		set, args = append(set, "completions = "+placeholder(len(args)+1)), append(args, string(buf))
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	stmt := `UPDATE habit SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)+1)
	args = append(args, update.ID)
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	habits, err := d.ListHabits(ctx, &store.FindHabit{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, fmt.Errorf("habit %d not found", update.ID)
	}
	return habits[0], nil
}

func (d *DB) DeleteHabit(ctx context.Context, delete *store.DeleteHabit) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM habit WHERE id = $1`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}
