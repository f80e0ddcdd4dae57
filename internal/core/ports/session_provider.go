package ports

import (
	"context"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// SessionEventType labels a session-change notification.
type SessionEventType string

const (
	// SessionInitial is emitted once, to report the session present (or
	// absent) when the subscription was registered.
	SessionInitial          SessionEventType = "INITIAL_SESSION"
	SessionSignedIn         SessionEventType = "SIGNED_IN"
	SessionSignedOut        SessionEventType = "SIGNED_OUT"
	SessionPasswordRecovery SessionEventType = "PASSWORD_RECOVERY"
)

// SessionEvent is a session-change notification. Session and User are nil
// when the event reports an absent session.
type SessionEvent struct {
	Type    SessionEventType
	Session *domain.Session
	User    *domain.User
}

// SessionProvider is the client-facing session surface the auth state
// controller is built against.
//
// Handlers registered via OnSessionChange are invoked from inside the
// provider; they must not call back into the provider synchronously.
type SessionProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, in SignUpInput) error
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*domain.Session, *domain.User, error)
	OnSessionChange(handler func(SessionEvent)) (unsubscribe func())
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}
