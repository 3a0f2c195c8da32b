package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eventdesk/server/auth"
	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/store"
)

// Client is the API representation of a client. Email is only shown to admins.
type Client struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedTs int64  `json:"created_ts"`
}

type ListClientsResponse struct {
	Clients []*Client `json:"clients"`
}

type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// ListClients lists clients by name.
// GET /api/v1/clients
func (s *APIV1Service) ListClients(c echo.Context) error {
	list, err := s.Store.ListClients(c.Request().Context())
	if err != nil {
		return storeError(err, "clients")
	}
	admin := auth.IsAdmin(c)
	clients := make([]*Client, 0, len(list))
	for _, client := range list {
		clients = append(clients, convertClientFromStore(client, admin))
	}
	return c.JSON(http.StatusOK, &ListClientsResponse{Clients: clients})
}

// GetClient returns one client.
// GET /api/v1/clients/:uid
func (s *APIV1Service) GetClient(c echo.Context) error {
	client, err := s.Store.GetClient(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return storeError(err, "client")
	}
	return c.JSON(http.StatusOK, convertClientFromStore(client, auth.IsAdmin(c)))
}

// CreateClient creates a client.
// POST /api/v1/clients
func (s *APIV1Service) CreateClient(c echo.Context) error {
	request := &CreateClientRequest{}
	if err := bind(c, request); err != nil {
		return err
	}
	request.Name = strings.TrimSpace(request.Name)
	if request.Name == "" {
		return apierrors.InvalidArgument("name is required")
	}
	if request.Email != "" && !validEmail(request.Email) {
		return apierrors.InvalidArgument("invalid email")
	}

	client, err := s.Store.CreateClient(c.Request().Context(), &store.Client{
		Name:    request.Name,
		Email:   request.Email,
		Company: strings.TrimSpace(request.Company),
	})
	if err != nil {
		return storeError(err, "client")
	}
	return c.JSON(http.StatusCreated, convertClientFromStore(client, true))
}

// DeleteClient deletes a client.
// DELETE /api/v1/clients/:uid
func (s *APIV1Service) DeleteClient(c echo.Context) error {
	if err := s.Store.DeleteClient(c.Request().Context(), &store.DeleteClient{UID: c.Param("uid")}); err != nil {
		return storeError(err, "client")
	}
	return c.NoContent(http.StatusNoContent)
}

func convertClientFromStore(client *store.Client, withEmail bool) *Client {
	result := &Client{
		UID:       client.UID,
		Name:      client.Name,
		Company:   client.Company,
		CreatedTs: client.CreatedTs,
	}
	if withEmail {
		result.Email = client.Email
	}
	return result
}
