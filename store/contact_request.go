package store

import (
	"context"

	"github.com/google/uuid"
)

// ContactRequest is a message left through the public contact form.
// Contact requests are write-mostly and never cached.
type ContactRequest struct {
	UID       string
	CreatedTs int64

	Name    string
	Email   string
	Message string
}

type FindContactRequest struct {
	Limit *int
}

func (s *Store) CreateContactRequest(ctx context.Context, create *ContactRequest) (*ContactRequest, error) {
	if create.UID == "" {
		create.UID = uuid.NewString()
	}
	return s.driver.CreateContactRequest(ctx, create)
}

// ListContactRequests lists contact requests, newest first.
func (s *Store) ListContactRequests(ctx context.Context, find *FindContactRequest) ([]*ContactRequest, error) {
	if find == nil {
		find = &FindContactRequest{}
	}
	return s.driver.ListContactRequests(ctx, find)
}
