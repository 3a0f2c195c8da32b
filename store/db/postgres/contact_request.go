package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store"
)

func (d *DB) CreateContactRequest(ctx context.Context, create *store.ContactRequest) (*store.ContactRequest, error) {
	fields := []string{"uid", "name", "email", "message"}
	args := []any{create.UID, create.Name, create.Email, create.Message}

	stmt := `INSERT INTO contact_request (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create contact request")
	}
	return create, nil
}

func (d *DB) ListContactRequests(ctx context.Context, find *store.FindContactRequest) ([]*store.ContactRequest, error) {
	query := `SELECT uid, created_ts, name, email, message FROM contact_request ORDER BY created_ts DESC, uid ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query contact requests")
	}
	defer rows.Close()

	list := make([]*store.ContactRequest, 0)
	for rows.Next() {
		var request store.ContactRequest
		if err := rows.Scan(&request.UID, &request.CreatedTs, &request.Name, &request.Email, &request.Message); err != nil {
			return nil, errors.Wrap(err, "failed to scan contact request")
		}
		list = append(list, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate contact requests")
	}
	return list, nil
}
