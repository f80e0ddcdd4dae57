package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freelaz/marketplace-api/internal/api/metrics"
	"github.com/freelaz/marketplace-api/internal/authstate"
	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
	"github.com/freelaz/marketplace-api/internal/guard"
)

// AccessTokenCookie carries the session token for browser-facing pages;
// API clients use the Authorization header instead.
const AccessTokenCookie = "access_token"

// RoleGuard protects a browser-facing page group with the role route guard.
// The request's session is resolved, profile and roles are loaded, and the
// pure guard decision is applied: allowed requests pass through, everything
// else is answered with a 302 to the role-appropriate landing location.
//
// Resolution failures are treated as "no session": the guard then redirects
// to a login page rather than erroring, matching its unauthenticated
// branch.
func RoleGuard(auth ports.AuthService, access ports.AccessReader, required guard.Required, explicitRedirect string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			state := resolveState(c, auth, access, log)
			metrics.SessionFetchDuration.Observe(time.Since(start).Seconds())

			decision := guard.Evaluate(state, required, explicitRedirect)
			switch decision.Outcome {
			case guard.OutcomeAllow:
				metrics.GuardDecisionsTotal.WithLabelValues(string(required), "allow").Inc()
				if state.User != nil {
					c.Set(CtxUserID, state.User.ID)
					c.Set(CtxEmail, state.User.Email)
				}
				return next(c)
			default:
				// Server-side resolution is synchronous, so OutcomeLoading
				// cannot occur here; only redirects remain.
				metrics.GuardDecisionsTotal.WithLabelValues(string(required), "redirect").Inc()
				return c.Redirect(http.StatusFound, decision.Target)
			}
		}
	}
}

// AdminGuard pre-binds the admin role.
func AdminGuard(auth ports.AuthService, access ports.AccessReader, log zerolog.Logger) echo.MiddlewareFunc {
	return RoleGuard(auth, access, guard.RequireAdmin, "", log)
}

// resolveState builds the guard's input from the request: session token
// from header or cookie, then profile and roles for the session's user.
// Loading is always false server-side. A fetch failure downgrades to
// authenticated-without-flags rather than failing the request.
func resolveState(c echo.Context, auth ports.AuthService, access ports.AccessReader, log zerolog.Logger) authstate.State {
	state := authstate.State{Roles: domain.NewRoleSet()}

	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return state
	}

	session, user, err := auth.GetSession(c.Request().Context(), token)
	if err != nil {
		return state
	}
	state.Session = session
	state.User = user

	profile, roles, err := access.Load(c.Request().Context(), user.ID)
	if err != nil {
		metrics.ProfileFetchErrorsTotal.Inc()
		log.Error().Err(err).Str("user_id", user.ID).Msg("guard profile fetch failed")
	} else {
		state.Profile = profile
		state.Roles = roles
	}

	state.Access = domain.DeriveAccess(state.Profile, state.Roles)
	return state
}

func bearerToken(c echo.Context) string {
	const prefix = "Bearer "
	h := c.Request().Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
