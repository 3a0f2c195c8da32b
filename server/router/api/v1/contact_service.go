package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/server/internal/observability"
	"github.com/hrygo/eventdesk/store"
)

const (
	maxContactMessageLength = 5000
	maxContactLimit         = 200
)

type ContactRequest struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedTs int64  `json:"created_ts"`
}

type CreateContactRequestRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ListContactRequestsResponse struct {
	ContactRequests []*ContactRequest `json:"contact_requests"`
}

// CreateContactRequest stores a message from the public contact form.
// POST /api/v1/contact
func (s *APIV1Service) CreateContactRequest(c echo.Context) error {
	request := &CreateContactRequestRequest{}
	if err := bind(c, request); err != nil {
		return err
	}
	request.Name = strings.TrimSpace(request.Name)
	request.Message = strings.TrimSpace(request.Message)
	switch {
	case request.Name == "":
		return apierrors.InvalidArgument("name is required")
	case !validEmail(request.Email):
		return apierrors.InvalidArgument("invalid email")
	case request.Message == "":
		return apierrors.InvalidArgument("message is required")
	case utf8.RuneCountInString(request.Message) > maxContactMessageLength:
		return apierrors.InvalidArgument("message is too long")
	}

	ctx := c.Request().Context()
	created, err := s.Store.CreateContactRequest(ctx, &store.ContactRequest{
		Name:    request.Name,
		Email:   request.Email,
		Message: request.Message,
	})
	if err != nil {
		return storeError(err, "contact request")
	}
	observability.Logger(ctx).Info("contact request received", slog.String("uid", created.UID))
	return c.JSON(http.StatusCreated, convertContactRequestFromStore(created))
}

// ListContactRequests lists received messages, newest first.
// GET /api/v1/contact?limit=
func (s *APIV1Service) ListContactRequests(c echo.Context) error {
	limit, err := queryLimit(c, maxContactLimit)
	if err != nil {
		return err
	}
	list, err := s.Store.ListContactRequests(c.Request().Context(), &store.FindContactRequest{Limit: limit})
	if err != nil {
		return storeError(err, "contact requests")
	}
	requests := make([]*ContactRequest, 0, len(list))
	for _, request := range list {
		requests = append(requests, convertContactRequestFromStore(request))
	}
	return c.JSON(http.StatusOK, &ListContactRequestsResponse{ContactRequests: requests})
}

func convertContactRequestFromStore(request *store.ContactRequest) *ContactRequest {
	return &ContactRequest{
		UID:       request.UID,
		Name:      request.Name,
		Email:     request.Email,
		Message:   request.Message,
		CreatedTs: request.CreatedTs,
	}
}
