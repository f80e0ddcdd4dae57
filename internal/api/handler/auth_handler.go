package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freelaz/marketplace-api/internal/authstate"
	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
	"github.com/freelaz/marketplace-api/internal/guard"
	"github.com/freelaz/marketplace-api/internal/i18n"
)

type AuthHandler struct {
	authService ports.AuthService
	access      ports.AccessReader
	baseURL     string
}

func NewAuthHandler(authService ports.AuthService, access ports.AccessReader, baseURL string) *AuthHandler {
	return &AuthHandler{authService: authService, access: access, baseURL: baseURL}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=client freelancer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	Token      string       `json:"token,omitempty"`
	User       *domain.User `json:"user,omitempty"`
	RedirectTo string       `json:"redirect_to,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and provisions its profile and role rows.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	lang := requestLang(c)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(lang, "invalid_payload")})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	role, ok := domain.ParseProfileRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(lang, "invalid_role")})
	}

	session, user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		return c.JSON(authErrorStatus(err), map[string]string{"error": authErrorMessage(lang, err)})
	}

	setSessionCookie(c, session)
	return c.JSON(http.StatusCreated, authResponse{
		Token:      session.AccessToken,
		User:       user,
		RedirectTo: h.redirectFor(c, user.ID),
	})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	lang := requestLang(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(lang, "invalid_payload")})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	session, user, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.JSON(authErrorStatus(err), map[string]string{"error": authErrorMessage(lang, err)})
	}

	setSessionCookie(c, session)
	return c.JSON(http.StatusOK, authResponse{
		Token:      session.AccessToken,
		User:       user,
		RedirectTo: h.redirectFor(c, user.ID),
	})
}

// Logout revokes the current session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get("access_token").(string)
	if token == "" {
		if cookie, err := c.Cookie("access_token"); err == nil {
			token = cookie.Value
		}
	}
	if token != "" {
		if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
			return err
		}
	}
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// Session returns the session and user for the presented token.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	lang := requestLang(c)

	token, _ := c.Get("access_token").(string)
	session, user, err := h.authService.GetSession(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": i18n.T(lang, "session_not_found")})
	}
	return c.JSON(http.StatusOK, authResponse{Token: session.AccessToken, User: user})
}

// ForgotPassword starts the password-recovery flow. Always answers 200 so
// the endpoint cannot be used to enumerate accounts.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	lang := requestLang(c)

	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(lang, "invalid_payload")})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	redirectTo := h.baseURL + "/auth/reset-password"
	if err := h.authService.ResetPasswordForEmail(c.Request().Context(), req.Email, redirectTo); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: i18n.T(lang, "reset_email_sent")})
}

// ResetPassword completes the recovery flow with the token from the mail
// link. Expired or reused tokens get a generic "link may have expired"
// answer; the store does not distinguish the reasons.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Recovery token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	lang := requestLang(c)

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(lang, "invalid_payload")})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return c.JSON(authErrorStatus(err), map[string]string{"error": authErrorMessage(lang, err)})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: i18n.T(lang, "password_updated")})
}

// redirectFor resolves the post-auth landing page from the user's derived
// access flags. Fetch failures fall back to the marketplace home rather
// than blocking the login response.
func (h *AuthHandler) redirectFor(c echo.Context, userID string) string {
	profile, roles, err := h.access.Load(c.Request().Context(), userID)
	if err != nil {
		return guard.MarketplaceHome
	}
	state := authstate.State{
		Access: domain.DeriveAccess(profile, roles),
	}
	if profile == nil && len(roles) == 0 {
		return guard.MarketplaceHome
	}
	return guard.HomeFor(state)
}

func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWeakPassword), errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func authErrorMessage(lang string, err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return i18n.T(lang, "user_exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return i18n.T(lang, "invalid_credentials")
	case errors.Is(err, domain.ErrUserNotFound):
		return i18n.T(lang, "user_not_found")
	case errors.Is(err, domain.ErrWeakPassword):
		return i18n.T(lang, "weak_password")
	case errors.Is(err, domain.ErrInvalidRole):
		return i18n.T(lang, "invalid_role")
	case errors.Is(err, domain.ErrInvalidResetToken):
		return i18n.T(lang, "invalid_reset_token")
	}
	return i18n.T(lang, "internal_error")
}

func requestLang(c echo.Context) string {
	return i18n.DetectLanguage(c.Request().Header.Get("Accept-Language"))
}

func setSessionCookie(c echo.Context, session *domain.Session) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
