package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eventdesk/server/auth"
	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/server/internal/observability"
	"github.com/hrygo/eventdesk/store"
)

const maxEventLimit = 500

// Event is the API representation of an event.
type Event struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"description_html,omitempty"`
	Location        string `json:"location"`
	StartTs         int64  `json:"start_ts"`
	EndTs           *int64 `json:"end_ts,omitempty"`
	Published       bool   `json:"published"`
	CreatedTs       int64  `json:"created_ts"`
	UpdatedTs       int64  `json:"updated_ts"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTs     int64  `json:"start_ts"`
	EndTs       *int64 `json:"end_ts"`
	Published   bool   `json:"published"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartTs     *int64  `json:"start_ts"`
	EndTs       *int64  `json:"end_ts"`
	Published   *bool   `json:"published"`
}

// ListEvents lists events ordered by start time.
// GET /api/v1/events?published=&from=&to=&limit=
// Anonymous callers only ever see published events.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	find := &store.FindEvent{}
	if auth.IsAdmin(c) {
		if raw := c.QueryParam("published"); raw != "" {
			published, err := strconv.ParseBool(raw)
			if err != nil {
				return apierrors.InvalidArgument("published must be a boolean")
			}
			find.Published = &published
		}
	} else {
		published := true
		find.Published = &published
	}

	var err error
	if find.FromTs, err = queryInt64(c, "from"); err != nil {
		return err
	}
	if find.ToTs, err = queryInt64(c, "to"); err != nil {
		return err
	}
	if find.Limit, err = queryLimit(c, maxEventLimit); err != nil {
		return err
	}

	list, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		return storeError(err, "events")
	}
	events := make([]*Event, 0, len(list))
	for _, event := range list {
		events = append(events, convertEventFromStore(event))
	}
	return c.JSON(http.StatusOK, &ListEventsResponse{Events: events})
}

// GetEvent returns one event with its description rendered to HTML.
// GET /api/v1/events/:uid
func (s *APIV1Service) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := s.Store.GetEvent(ctx, c.Param("uid"))
	if err != nil {
		return storeError(err, "event")
	}
	if !event.Published && !auth.IsAdmin(c) {
		return apierrors.NotFound("event not found")
	}

	response := convertEventFromStore(event)
	html, err := s.MarkdownService.RenderEvent(ctx, event)
	if err != nil {
		observability.Logger(ctx).Warn("failed to render event description",
			slog.String("uid", event.UID), slog.String("error", err.Error()))
	} else {
		response.DescriptionHTML = html
	}
	return c.JSON(http.StatusOK, response)
}

// CreateEvent creates an event.
// POST /api/v1/events
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	request := &CreateEventRequest{}
	if err := bind(c, request); err != nil {
		return err
	}
	request.Title = strings.TrimSpace(request.Title)
	if request.Title == "" {
		return apierrors.InvalidArgument("title is required")
	}
	if request.StartTs <= 0 {
		return apierrors.InvalidArgument("start_ts is required")
	}
	if request.EndTs != nil && *request.EndTs < request.StartTs {
		return apierrors.InvalidArgument("end_ts must not be before start_ts")
	}

	event, err := s.Store.CreateEvent(c.Request().Context(), &store.Event{
		Title:       request.Title,
		Description: request.Description,
		Location:    request.Location,
		StartTs:     request.StartTs,
		EndTs:       request.EndTs,
		Published:   request.Published,
	})
	if err != nil {
		return storeError(err, "event")
	}
	return c.JSON(http.StatusCreated, convertEventFromStore(event))
}

// UpdateEvent applies the fields present in the body.
// PATCH /api/v1/events/:uid
func (s *APIV1Service) UpdateEvent(c echo.Context) error {
	request := &UpdateEventRequest{}
	if err := bind(c, request); err != nil {
		return err
	}
	if request.Title != nil {
		title := strings.TrimSpace(*request.Title)
		if title == "" {
			return apierrors.InvalidArgument("title must not be empty")
		}
		request.Title = &title
	}
	if request.StartTs != nil && *request.StartTs <= 0 {
		return apierrors.InvalidArgument("start_ts must be positive")
	}
	if request.StartTs != nil && request.EndTs != nil && *request.EndTs < *request.StartTs {
		return apierrors.InvalidArgument("end_ts must not be before start_ts")
	}
	if request.Title == nil && request.Description == nil && request.Location == nil &&
		request.StartTs == nil && request.EndTs == nil && request.Published == nil {
		return apierrors.InvalidArgument("no fields to update")
	}

	event, err := s.Store.UpdateEvent(c.Request().Context(), &store.UpdateEvent{
		UID:         c.Param("uid"),
		Title:       request.Title,
		Description: request.Description,
		Location:    request.Location,
		StartTs:     request.StartTs,
		EndTs:       request.EndTs,
		Published:   request.Published,
	})
	if err != nil {
		return storeError(err, "event")
	}
	return c.JSON(http.StatusOK, convertEventFromStore(event))
}

// DeleteEvent deletes an event.
// DELETE /api/v1/events/:uid
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	if err := s.Store.DeleteEvent(c.Request().Context(), &store.DeleteEvent{UID: c.Param("uid")}); err != nil {
		return storeError(err, "event")
	}
	return c.NoContent(http.StatusNoContent)
}

func convertEventFromStore(event *store.Event) *Event {
	return &Event{
		UID:         event.UID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTs:     event.StartTs,
		EndTs:       event.EndTs,
		Published:   event.Published,
		CreatedTs:   event.CreatedTs,
		UpdatedTs:   event.UpdatedTs,
	}
}
