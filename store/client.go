package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hrygo/eventdesk/store/cache"
)

// Client is a customer shown on the site.
type Client struct {
	UID       string
	CreatedTs int64

	Name    string
	Email   string
	Company string
}

type FindClient struct {
	UID *string
}

type DeleteClient struct {
	UID string
}

var clientListKey = cache.Key(clientNamespace, "list")

func clientKey(uid string) string {
	return cache.Key(clientNamespace, "id", uid)
}

func (s *Store) CreateClient(ctx context.Context, create *Client) (*Client, error) {
	if create.UID == "" {
		create.UID = uuid.NewString()
	}
	client, err := s.driver.CreateClient(ctx, create)
	if err != nil {
		return nil, err
	}
	s.invalidate(clientNamespace)
	return client, nil
}

// ListClients returns every client ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]*Client, error) {
	return cache.MemoizeAs(ctx, s.cache, clientListKey, 0, func(ctx context.Context) ([]*Client, error) {
		return s.driver.ListClients(ctx, &FindClient{})
	})
}

// GetClient returns the client with uid, or ErrNotFound.
func (s *Store) GetClient(ctx context.Context, uid string) (*Client, error) {
	return cache.MemoizeAs(ctx, s.cache, clientKey(uid), 0, func(ctx context.Context) (*Client, error) {
		list, err := s.driver.ListClients(ctx, &FindClient{UID: &uid})
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNotFound
		}
		return list[0], nil
	})
}

func (s *Store) DeleteClient(ctx context.Context, delete *DeleteClient) error {
	if err := s.driver.DeleteClient(ctx, delete); err != nil {
		return err
	}
	s.invalidate(clientNamespace)
	return nil
}
