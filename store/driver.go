package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// Event model related methods.
	CreateEvent(ctx context.Context, create *Event) (*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	UpdateEvent(ctx context.Context, update *UpdateEvent) (*Event, error)
	DeleteEvent(ctx context.Context, delete *DeleteEvent) error

	// Client model related methods.
	CreateClient(ctx context.Context, create *Client) (*Client, error)
	ListClients(ctx context.Context, find *FindClient) ([]*Client, error)
	DeleteClient(ctx context.Context, delete *DeleteClient) error

	// ContactRequest model related methods.
	CreateContactRequest(ctx context.Context, create *ContactRequest) (*ContactRequest, error)
	ListContactRequests(ctx context.Context, find *FindContactRequest) ([]*ContactRequest, error)

	// Setting model related methods.
	UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error)
	ListSettings(ctx context.Context, find *FindSetting) ([]*Setting, error)
}
