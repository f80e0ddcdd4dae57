// Package authstate implements the client-side auth/session state machine:
// a single-actor controller that mirrors the session provider's state,
// fetches the profile and role rows behind it, and exposes the derived
// access flags consumed by the role route guard.
package authstate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/freelaz/marketplace-api/internal/api/metrics"
	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

const fetchQueueBuffer = 16

// State is a read-only snapshot of the controller. Access is derived from
// Profile and Roles at snapshot time; the three flags are not mutually
// exclusive.
type State struct {
	User    *domain.User
	Session *domain.Session
	Profile *domain.Profile
	Roles   domain.RoleSet
	Access  domain.Access
	Loading bool
}

type fetchTask struct {
	userID string
	gen    uint64
}

// Controller is the single source of truth for who the current actor is and
// what they can access.
//
// Session-change handlers run inside the provider, so the controller never
// calls back into the provider from them: profile fetches triggered by an
// event go through an internal task queue consumed by a worker goroutine,
// guaranteeing the provider's call stack has unwound first. Each change of
// actor bumps a fetch generation; a fetch result whose generation is no
// longer current is discarded, so a stale fetch for a previous user can
// never overwrite the state of the one who signed in after them.
type Controller struct {
	provider ports.SessionProvider
	access   ports.AccessReader
	log      zerolog.Logger
	ctx      context.Context

	mu      sync.Mutex
	user    *domain.User
	session *domain.Session
	profile *domain.Profile
	roles   domain.RoleSet
	loading bool
	gen     uint64

	loadingOnce sync.Once
	closeOnce   sync.Once
	tasks       chan fetchTask
	done        chan struct{}
	unsubscribe func()
}

// New builds a controller, registers the session-change subscription before
// requesting the session snapshot, and starts the fetch worker. ctx bounds
// the controller's lifetime; Close must be called at teardown.
func New(ctx context.Context, provider ports.SessionProvider, access ports.AccessReader, log zerolog.Logger) *Controller {
	c := &Controller{
		provider: provider,
		access:   access,
		log:      log,
		ctx:      ctx,
		roles:    domain.NewRoleSet(),
		loading:  true,
		tasks:    make(chan fetchTask, fetchQueueBuffer),
		done:     make(chan struct{}),
	}

	// Subscription first: events that race the snapshot request must not be
	// lost.
	c.unsubscribe = provider.OnSessionChange(c.handleEvent)
	go c.worker()
	go c.bootstrap()

	return c
}

// Close releases the session-change subscription and stops the fetch
// worker. In-flight fetches complete but their results are discarded once
// the generation no longer matches.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		close(c.done)
	})
}

// Snapshot returns the current state. Callers treat it as read-only.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		User:    c.user,
		Session: c.session,
		Profile: c.profile,
		Roles:   c.roles,
		Access:  domain.DeriveAccess(c.profile, c.roles),
		Loading: c.loading,
	}
}

// SignIn delegates the credential check to the provider. Success means the
// provider accepted the credentials; local state updates asynchronously via
// the session-change subscription, so callers must not read an updated
// Snapshot immediately after this returns.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	return c.provider.SignInWithPassword(ctx, email, password)
}

// SignUp delegates account creation and provisioning to the provider. As
// with SignIn, state updates arrive asynchronously.
func (c *Controller) SignUp(ctx context.Context, in ports.SignUpInput) error {
	return c.provider.SignUp(ctx, in)
}

// SignOut invalidates the provider session and clears all local state
// synchronously: callers observe an unauthenticated Snapshot as soon as
// this returns, regardless of when the SIGNED_OUT event lands.
func (c *Controller) SignOut(ctx context.Context) error {
	err := c.provider.SignOut(ctx)
	c.mu.Lock()
	c.clearActorLocked()
	c.mu.Unlock()
	return err
}

// RefreshProfile re-fetches the profile and role rows for the current user.
// No-op when no user is set.
func (c *Controller) RefreshProfile(ctx context.Context) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	task := fetchTask{userID: c.user.ID, gen: c.gen}
	c.mu.Unlock()

	c.fetch(ctx, task)
}

func (c *Controller) handleEvent(ev ports.SessionEvent) {
	c.mu.Lock()
	if ev.Session != nil && ev.User != nil {
		// The initial event and the snapshot request race each other; when
		// the snapshot already installed this user, the initial event must
		// not schedule a second fetch for them.
		if ev.Type == ports.SessionInitial && c.user != nil && c.user.ID == ev.User.ID {
			c.mu.Unlock()
			c.clearLoading()
			return
		}
		c.session = ev.Session
		c.user = ev.User
		c.gen++
		task := fetchTask{userID: ev.User.ID, gen: c.gen}
		c.mu.Unlock()
		c.enqueue(task)
	} else if ev.Type != ports.SessionPasswordRecovery {
		// Session lost: profile and roles are cleared synchronously, no
		// deferral needed since nothing here re-enters the provider.
		c.clearActorLocked()
		c.mu.Unlock()
	} else {
		c.mu.Unlock()
	}

	if ev.Type == ports.SessionInitial {
		c.clearLoading()
	}
}

// bootstrap requests the session snapshot. Runs concurrently with the
// subscription's initial event; whichever lands first wins, and the loading
// flag is cleared exactly once between the two paths.
func (c *Controller) bootstrap() {
	session, user, err := c.provider.GetSession(c.ctx)
	if err == nil && user != nil {
		c.mu.Lock()
		// Skip when the initial event already installed this user so a
		// session present at startup triggers one fetch, not two.
		if c.user == nil || c.user.ID != user.ID {
			c.session = session
			c.user = user
			c.gen++
			task := fetchTask{userID: user.ID, gen: c.gen}
			c.mu.Unlock()
			c.enqueue(task)
		} else {
			c.mu.Unlock()
		}
	} else if err != nil {
		c.log.Error().Err(err).Msg("session snapshot failed")
	}
	c.clearLoading()
}

// clearActorLocked resets user, session, profile and roles. The generation
// bump invalidates any fetch still in flight. Callers hold c.mu.
func (c *Controller) clearActorLocked() {
	c.user = nil
	c.session = nil
	c.profile = nil
	c.roles = domain.NewRoleSet()
	c.gen++
}

func (c *Controller) clearLoading() {
	c.loadingOnce.Do(func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	})
}

func (c *Controller) enqueue(task fetchTask) {
	select {
	case c.tasks <- task:
	case <-c.done:
	}
}

func (c *Controller) worker() {
	for {
		select {
		case <-c.done:
			return
		case task := <-c.tasks:
			c.fetch(c.ctx, task)
		}
	}
}

// fetch loads profile and roles, then applies the result only if the
// generation is still current. Fetch errors leave prior state in place.
func (c *Controller) fetch(ctx context.Context, task fetchTask) {
	profile, roles, err := c.access.Load(ctx, task.userID)
	if err != nil {
		metrics.ProfileFetchErrorsTotal.Inc()
		c.log.Error().Err(err).Str("user_id", task.userID).Msg("profile fetch failed")
		return
	}

	c.mu.Lock()
	if c.gen == task.gen {
		c.profile = profile
		c.roles = roles
	}
	c.mu.Unlock()
}
