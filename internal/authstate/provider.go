package authstate

import (
	"context"
	"sync"

	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

// LocalProvider adapts the backend AuthService to the SessionProvider
// surface for a single in-process actor. It tracks the actor's current
// access token and fans session-change events out to subscribers.
//
// Handlers are invoked synchronously from provider operations; per the
// SessionProvider contract they must not call back into the provider.
type LocalProvider struct {
	auth ports.AuthService

	mu            sync.Mutex
	session       *domain.Session
	user          *domain.User
	recoveryToken string
	handlers      map[int]func(ports.SessionEvent)
	nextHandlerID int
}

func NewLocalProvider(auth ports.AuthService) *LocalProvider {
	return &LocalProvider{
		auth:     auth,
		handlers: make(map[int]func(ports.SessionEvent)),
	}
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	session, user, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	p.setActor(session, user)
	p.emit(ports.SessionEvent{Type: ports.SessionSignedIn, Session: session, User: user})
	return nil
}

func (p *LocalProvider) SignUp(ctx context.Context, in ports.SignUpInput) error {
	session, user, err := p.auth.SignUp(ctx, in)
	if err != nil {
		return err
	}
	p.setActor(session, user)
	p.emit(ports.SessionEvent{Type: ports.SessionSignedIn, Session: session, User: user})
	return nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	session := p.session
	p.session = nil
	p.user = nil
	p.mu.Unlock()

	var err error
	if session != nil {
		err = p.auth.SignOut(ctx, session.AccessToken)
	}
	p.emit(ports.SessionEvent{Type: ports.SessionSignedOut})
	return err
}

func (p *LocalProvider) GetSession(ctx context.Context) (*domain.Session, *domain.User, error) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()
	if session == nil {
		return nil, nil, nil
	}
	// Revalidate against the backend: the token may have been revoked.
	return p.auth.GetSession(ctx, session.AccessToken)
}

// OnSessionChange registers a handler and reports the current session to it
// asynchronously as an INITIAL_SESSION event. The returned function
// releases the subscription.
func (p *LocalProvider) OnSessionChange(handler func(ports.SessionEvent)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextHandlerID
	p.nextHandlerID++
	p.handlers[id] = handler
	initial := ports.SessionEvent{Type: ports.SessionInitial, Session: p.session, User: p.user}
	p.mu.Unlock()

	go handler(initial)

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return p.auth.ResetPasswordForEmail(ctx, email, redirectTo)
}

// HandleRecoveryLink installs the token carried by a recovery link and
// emits a PASSWORD_RECOVERY event, unlocking UpdatePassword.
func (p *LocalProvider) HandleRecoveryLink(token string) {
	p.mu.Lock()
	p.recoveryToken = token
	session, user := p.session, p.user
	p.mu.Unlock()
	p.emit(ports.SessionEvent{Type: ports.SessionPasswordRecovery, Session: session, User: user})
}

func (p *LocalProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.mu.Lock()
	token := p.recoveryToken
	p.mu.Unlock()
	if token == "" {
		return domain.ErrInvalidResetToken
	}

	if err := p.auth.UpdatePassword(ctx, token, newPassword); err != nil {
		return err
	}

	p.mu.Lock()
	p.recoveryToken = ""
	p.mu.Unlock()
	return nil
}

func (p *LocalProvider) setActor(session *domain.Session, user *domain.User) {
	p.mu.Lock()
	p.session = session
	p.user = user
	p.mu.Unlock()
}

func (p *LocalProvider) emit(ev ports.SessionEvent) {
	p.mu.Lock()
	handlers := make([]func(ports.SessionEvent), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
