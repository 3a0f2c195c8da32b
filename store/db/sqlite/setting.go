package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store"
)

func (d *DB) UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error) {
	stmt := `INSERT INTO setting (name, value, updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_ts = excluded.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Name, upsert.Value, upsert.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert setting")
	}
	return upsert, nil
}

func (d *DB) ListSettings(ctx context.Context, find *store.FindSetting) ([]*store.Setting, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Name; v != nil {
		where, args = append(where, "name = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT name, value, updated_ts FROM setting WHERE `+strings.Join(where, " AND ")+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query settings")
	}
	defer rows.Close()

	list := make([]*store.Setting, 0)
	for rows.Next() {
		var setting store.Setting
		if err := rows.Scan(&setting.Name, &setting.Value, &setting.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan setting")
		}
		list = append(list, &setting)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate settings")
	}
	return list, nil
}
