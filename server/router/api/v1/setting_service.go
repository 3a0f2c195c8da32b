package v1

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/store"
)

var settingNameRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

type Setting struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	UpdatedTs int64  `json:"updated_ts"`
}

type UpsertSettingRequest struct {
	Value string `json:"value"`
}

// GetSetting returns a site setting.
// GET /api/v1/settings/:name
func (s *APIV1Service) GetSetting(c echo.Context) error {
	name := c.Param("name")
	if !settingNameRegexp.MatchString(name) {
		return apierrors.InvalidArgument("invalid setting name")
	}
	setting, err := s.Store.GetSetting(c.Request().Context(), name)
	if err != nil {
		return storeError(err, "setting")
	}
	return c.JSON(http.StatusOK, convertSettingFromStore(setting))
}

// UpsertSetting creates or replaces a site setting.
// PUT /api/v1/settings/:name
func (s *APIV1Service) UpsertSetting(c echo.Context) error {
	name := c.Param("name")
	if !settingNameRegexp.MatchString(name) {
		return apierrors.InvalidArgument("invalid setting name")
	}
	request := &UpsertSettingRequest{}
	if err := bind(c, request); err != nil {
		return err
	}

	setting, err := s.Store.UpsertSetting(c.Request().Context(), &store.Setting{Name: name, Value: request.Value})
	if err != nil {
		return storeError(err, "setting")
	}
	return c.JSON(http.StatusOK, convertSettingFromStore(setting))
}

func convertSettingFromStore(setting *store.Setting) *Setting {
	return &Setting{
		Name:      setting.Name,
		Value:     setting.Value,
		UpdatedTs: setting.UpdatedTs,
	}
}
