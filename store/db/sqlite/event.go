package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store"
)

const eventColumns = "uid, created_ts, updated_ts, title, description, location, start_ts, end_ts, published"

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	fields := []string{"uid", "title", "description", "location", "start_ts", "end_ts", "published"}
	args := []any{create.UID, create.Title, create.Description, create.Location, create.StartTs, nullInt64(create.EndTs), create.Published}

	stmt := `INSERT INTO event (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create event")
	}
	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Published; v != nil {
		where, args = append(where, "published = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.FromTs; v != nil {
		where, args = append(where, "start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ToTs; v != nil {
		where, args = append(where, "start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT ` + eventColumns + ` FROM event WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_ts ASC, uid ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate events")
	}
	return list, nil
}

func (d *DB) UpdateEvent(ctx context.Context, update *store.UpdateEvent) (*store.Event, error) {
	set, args := []string{}, []any{}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Published; v != nil {
		set, args = append(set, "published = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}
	args = append(args, update.UID)

	stmt := `UPDATE event SET ` + strings.Join(set, ", ") + ` WHERE uid = ` + placeholder(len(args)) + ` RETURNING ` + eventColumns
	event, err := scanEvent(d.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM event WHERE uid = `+placeholder(1), delete.UID)
	if err != nil {
		return errors.Wrap(err, "failed to delete event")
	}
	return checkAffected(result)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*store.Event, error) {
	var event store.Event
	var endTs sql.NullInt64
	if err := row.Scan(
		&event.UID,
		&event.CreatedTs,
		&event.UpdatedTs,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartTs,
		&endTs,
		&event.Published,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan event")
	}
	if endTs.Valid {
		event.EndTs = &endTs.Int64
	}
	return &event, nil
}
