package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
	"github.com/freelaz/marketplace-api/internal/i18n"
)

type ProfileHandler struct {
	access ports.AccessReader
}

func NewProfileHandler(access ports.AccessReader) *ProfileHandler {
	return &ProfileHandler{access: access}
}

type meResponse struct {
	UserID  string           `json:"user_id"`
	Email   string           `json:"email"`
	Profile *domain.Profile  `json:"profile"`
	Roles   []domain.AppRole `json:"roles"`
	Access  domain.Access    `json:"access"`
}

// Me returns the caller's profile, role assignments, and derived access
// flags. A partially provisioned account gets a nil profile and all-false
// flags, never an error.
//
// @Summary      Current user's profile and access
// @Tags         profile
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	lang := requestLang(c)

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, i18n.T(lang, "session_not_found"))
	}

	profile, roles, err := h.access.Load(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	email, _ := c.Get("email").(string)
	return c.JSON(http.StatusOK, meResponse{
		UserID:  userID,
		Email:   email,
		Profile: profile,
		Roles:   roles.Slice(),
		Access:  domain.DeriveAccess(profile, roles),
	})
}
