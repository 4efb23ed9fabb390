package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amanjaiman/habit-server/store"
)

func (d *DB) CreateGroup(ctx context.Context, create *store.Group) (*store.Group, error) {
	if create.Members == nil {
		create.Members = []int32{}
	}
	if create.Habits == nil {
		create.Habits = []*store.GroupHabit{}
	}
	members, err := json.Marshal(create.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal members: %w", err)
	}
	habits, err := json.Marshal(create.Habits)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal group habits: %w", err)
	}

	fields := []string{"uid", "name", "description", "admin_id", "join_code", "members", "habits", "created_ts"}
	args := []any{create.UID, create.Name, create.Description, create.AdminID, create.JoinCode, string(members), string(habits), create.CreatedTs}

	stmt := `INSERT INTO habit_group (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return create, nil
}

func (d *DB) ListGroups(ctx context.Context, find *store.FindGroup) ([]*store.Group, error) {
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
	if find.AdminID != nil {
		where, args = append(where, "admin_id = "+placeholder(len(args)+1)), append(args, *find.AdminID)
	}

	query := `SELECT id, uid, name, description, admin_id, join_code, members, habits, created_ts
		FROM habit_group WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Group, 0)
	for rows.Next() {
		group := &store.Group{}
		var members, habits string
		if err := rows.Scan(
			&group.ID,
			&group.UID,
			&group.Name,
			&group.Description,
			&group.AdminID,
			&group.JoinCode,
			&members,
			&habits,
			&group.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &group.Members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members: %w", err)
		}
		if err := json.Unmarshal([]byte(habits), &group.Habits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group habits: %w", err)
		}
		list = append(list, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Membership filter is applied after scan; member lists are small
	// and this keeps the query portable across drivers.
	if find.MemberID != nil {
		filtered := make([]*store.Group, 0, len(list))
		for _, group := range list {
			if group.HasMember(*find.MemberID) {
				filtered = append(filtered, group)
			}
		}
		list = filtered
	}

	return list, nil
}

func (d *DB) UpdateGroup(ctx context.Context, update *store.UpdateGroup) (*store.Group, error) {
	set, args := []string{}, []any{}
	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Members != nil {
		buf, err := json.Marshal(update.Members)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal members: %w", err)
		}
		set, args = append(set, "members = "+placeholder(len(args)+1)), append(args, string(buf))
	}
	if update.Habits != nil {
		buf, err := json.Marshal(update.Habits)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal group habits: %w", err)
		}
		set, args = append(set, "habits = "+placeholder(len(args)+1)), append(args, string(buf))
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	stmt := `UPDATE habit_group SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)+1)
	args = append(args, update.ID)
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	groups, err := d.ListGroups(ctx, &store.FindGroup{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("group %d not found", update.ID)
	}
	return groups[0], nil
}

func (d *DB) DeleteGroup(ctx context.Context, delete *store.DeleteGroup) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM habit_group WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
