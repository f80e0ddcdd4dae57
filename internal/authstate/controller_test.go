package authstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// scriptedProvider lets tests drive session-change events by hand.
type scriptedProvider struct {
	mu       sync.Mutex
	session  *domain.Session
	user     *domain.User
	handlers []func(ports.SessionEvent)
}

func (p *scriptedProvider) SignInWithPassword(context.Context, string, string) error { return nil }
func (p *scriptedProvider) SignUp(context.Context, ports.SignUpInput) error          { return nil }

func (p *scriptedProvider) SignOut(context.Context) error {
	p.setActor(nil, nil)
	p.emit(ports.SessionEvent{Type: ports.SessionSignedOut})
	return nil
}

func (p *scriptedProvider) GetSession(context.Context) (*domain.Session, *domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, p.user, nil
}

func (p *scriptedProvider) OnSessionChange(handler func(ports.SessionEvent)) func() {
	p.mu.Lock()
	p.handlers = append(p.handlers, handler)
	initial := ports.SessionEvent{Type: ports.SessionInitial, Session: p.session, User: p.user}
	p.mu.Unlock()
	go handler(initial)
	return func() {}
}

func (p *scriptedProvider) ResetPasswordForEmail(context.Context, string, string) error { return nil }
func (p *scriptedProvider) UpdatePassword(context.Context, string) error                { return nil }

func (p *scriptedProvider) setActor(session *domain.Session, user *domain.User) {
	p.mu.Lock()
	p.session = session
	p.user = user
	p.mu.Unlock()
}

func (p *scriptedProvider) signInAs(userID string) {
	session := &domain.Session{ID: "sess_" + userID, UserID: userID}
	user := &domain.User{ID: userID, Email: userID + "@example.com"}
	p.setActor(session, user)
	p.emit(ports.SessionEvent{Type: ports.SessionSignedIn, Session: session, User: user})
}

func (p *scriptedProvider) emit(ev ports.SessionEvent) {
	p.mu.Lock()
	handlers := append([]func(ports.SessionEvent){}, p.handlers...)
	p.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// gatedAccess serves per-user profiles and roles; when gate is set, each
// Load blocks until the gate receives a signal.
type gatedAccess struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	roles    map[string]domain.RoleSet
	gate     chan struct{}
	err      error
	calls    int
}

func newGatedAccess() *gatedAccess {
	return &gatedAccess{
		profiles: make(map[string]*domain.Profile),
		roles:    make(map[string]domain.RoleSet),
	}
}

func (a *gatedAccess) Load(ctx context.Context, userID string) (*domain.Profile, domain.RoleSet, error) {
	a.mu.Lock()
	a.calls++
	gate := a.gate
	err := a.err
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	profile := a.profiles[userID]
	roles := a.roles[userID]
	if roles == nil {
		roles = domain.NewRoleSet()
	}
	return profile, roles, nil
}

func (a *gatedAccess) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestController_Bootstrap_NoSession(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()

	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	state := c.Snapshot()
	if state.User != nil || state.Profile != nil {
		t.Fatalf("expected empty state, got %+v", state)
	}
	if state.Access != (domain.Access{}) {
		t.Fatalf("expected no access flags, got %+v", state.Access)
	}
}

func TestController_Bootstrap_ExistingSession(t *testing.T) {
	provider := &scriptedProvider{}
	provider.setActor(&domain.Session{ID: "sess_1", UserID: "u1"}, &domain.User{ID: "u1", Email: "u1@example.com"})

	access := newGatedAccess()
	access.profiles["u1"] = &domain.Profile{ID: "u1", Role: "freelancer"}
	access.roles["u1"] = domain.NewRoleSet(domain.AppRoleSeller)

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()

	waitFor(t, time.Second, func() bool {
		s := c.Snapshot()
		return !s.Loading && s.Profile != nil
	})

	state := c.Snapshot()
	if state.User == nil || state.User.ID != "u1" {
		t.Fatalf("expected user u1, got %+v", state.User)
	}
	if !state.Access.IsFreelancer {
		t.Fatalf("expected freelancer access, got %+v", state.Access)
	}

	// A session present at startup triggers one fetch, not one per
	// bootstrap path.
	time.Sleep(20 * time.Millisecond)
	if got := access.callCount(); got != 1 {
		t.Fatalf("expected exactly one profile fetch, got %d", got)
	}
}

func TestController_SignInUpdatesStateAsync(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()
	access.profiles["u1"] = &domain.Profile{ID: "u1", Role: "client"}
	access.roles["u1"] = domain.NewRoleSet(domain.AppRoleCustomer)

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	provider.signInAs("u1")

	waitFor(t, time.Second, func() bool {
		s := c.Snapshot()
		return s.User != nil && s.Access.IsClient
	})
}

func TestController_SignOutClearsSynchronously(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()
	access.profiles["u1"] = &domain.Profile{ID: "u1", Role: "client"}

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	provider.signInAs("u1")
	waitFor(t, time.Second, func() bool { return c.Snapshot().Profile != nil })

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}

	// No waiting: the contract is synchronous clearing.
	state := c.Snapshot()
	if state.User != nil || state.Session != nil || state.Profile != nil || len(state.Roles) != 0 {
		t.Fatalf("expected cleared state, got %+v", state)
	}
	if state.Access != (domain.Access{}) {
		t.Fatalf("expected no access after sign-out, got %+v", state.Access)
	}
}

func TestController_RefreshProfile(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()
	access.profiles["u1"] = &domain.Profile{ID: "u1", Role: "client", FullName: "Ana"}
	access.roles["u1"] = domain.NewRoleSet(domain.AppRoleCustomer)

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	// No-op while signed out.
	before := access.callCount()
	c.RefreshProfile(context.Background())
	if access.callCount() != before {
		t.Fatalf("refresh without a user must not fetch")
	}

	provider.signInAs("u1")
	waitFor(t, time.Second, func() bool { return c.Snapshot().Profile != nil })

	// Idempotent: repeated refreshes with no external change converge on
	// the same state.
	c.RefreshProfile(context.Background())
	first := c.Snapshot()
	c.RefreshProfile(context.Background())
	second := c.Snapshot()

	if first.Profile.FullName != second.Profile.FullName || first.Access != second.Access {
		t.Fatalf("refresh is not idempotent: %+v vs %+v", first, second)
	}
}

func TestController_FetchErrorKeepsPriorState(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()
	access.profiles["u1"] = &domain.Profile{ID: "u1", Role: "client", FullName: "Ana"}

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	provider.signInAs("u1")
	waitFor(t, time.Second, func() bool { return c.Snapshot().Profile != nil })

	access.mu.Lock()
	access.err = errors.New("backend down")
	access.mu.Unlock()

	c.RefreshProfile(context.Background())

	state := c.Snapshot()
	if state.Profile == nil || state.Profile.FullName != "Ana" {
		t.Fatalf("fetch error must keep prior profile, got %+v", state.Profile)
	}
}

func TestController_StaleFetchDiscarded(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()
	access.profiles["userA"] = &domain.Profile{ID: "userA", Role: "client", FullName: "A"}
	access.profiles["userB"] = &domain.Profile{ID: "userB", Role: "freelancer", FullName: "B"}
	access.roles["userB"] = domain.NewRoleSet(domain.AppRoleSeller)

	c := New(context.Background(), provider, access, zerolog.Nop())
	defer c.Close()
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })

	// Gate fetches so user A's stays in flight.
	gate := make(chan struct{})
	access.mu.Lock()
	access.gate = gate
	access.mu.Unlock()

	provider.signInAs("userA")
	waitFor(t, time.Second, func() bool { return access.callCount() == 1 })

	// A signs out and B signs in while A's fetch is still in flight.
	if err := provider.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}
	provider.signInAs("userB")

	// A's stale fetch completes first; it must be discarded.
	gate <- struct{}{}
	// Then B's fetch completes and applies.
	gate <- struct{}{}

	waitFor(t, time.Second, func() bool {
		s := c.Snapshot()
		return s.Profile != nil && s.Profile.FullName == "B"
	})

	state := c.Snapshot()
	if state.Profile.FullName != "B" || !state.Access.IsFreelancer {
		t.Fatalf("stale fetch overwrote newer state: %+v", state)
	}
	if state.Access.IsClient {
		t.Fatalf("user A's flags leaked into user B's state: %+v", state.Access)
	}
}

func TestController_CloseUnsubscribes(t *testing.T) {
	provider := &scriptedProvider{}
	access := newGatedAccess()

	c := New(context.Background(), provider, access, zerolog.Nop())
	waitFor(t, time.Second, func() bool { return !c.Snapshot().Loading })
	c.Close()

	// Events after Close must not panic or deadlock; double Close is safe.
	provider.signInAs("u1")
	c.Close()
}
