package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store"
)

func (d *DB) CreateClient(ctx context.Context, create *store.Client) (*store.Client, error) {
	fields := []string{"uid", "name", "email", "company"}
	args := []any{create.UID, create.Name, create.Email, create.Company}

	stmt := `INSERT INTO client (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	return create, nil
}

func (d *DB) ListClients(ctx context.Context, find *store.FindClient) ([]*store.Client, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT uid, created_ts, name, email, company FROM client WHERE `+strings.Join(where, " AND ")+` ORDER BY name ASC, uid ASC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query clients")
	}
	defer rows.Close()

	list := make([]*store.Client, 0)
	for rows.Next() {
		var client store.Client
		if err := rows.Scan(&client.UID, &client.CreatedTs, &client.Name, &client.Email, &client.Company); err != nil {
			return nil, errors.Wrap(err, "failed to scan client")
		}
		list = append(list, &client)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate clients")
	}
	return list, nil
}

func (d *DB) DeleteClient(ctx context.Context, delete *store.DeleteClient) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM client WHERE uid = `+placeholder(1), delete.UID)
	if err != nil {
		return errors.Wrap(err, "failed to delete client")
	}
	return checkAffected(result)
}
