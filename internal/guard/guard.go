// Package guard decides, per render/request, whether the current actor may
// see a role-protected area, and where to send them when they may not.
package guard

import "github.com/freelaz/marketplace-api/internal/authstate"

// Required is the role a protected area demands.
type Required string

const (
	RequireClient     Required = "client"
	RequireFreelancer Required = "freelancer"
	RequireAdmin      Required = "admin"
)

// Landing locations.
const (
	LoginPath       = "/auth/login"
	AdminLoginPath  = "/admin/login"
	AdminHome       = "/admin"
	FreelancerHome  = "/freelas"
	MarketplaceHome = "/marketplace"
)

// Outcome tags a Decision.
type Outcome int

const (
	// OutcomeLoading: auth state is still bootstrapping; render a
	// placeholder and make no redirect decision yet.
	OutcomeLoading Outcome = iota
	// OutcomeAllow: render the protected content.
	OutcomeAllow
	// OutcomeRedirect: send the viewer to Decision.Target.
	OutcomeRedirect
)

// Decision is the result of evaluating a guard. Target is set only for
// OutcomeRedirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Evaluate is a pure function of the auth state; it is safe to re-run on
// every state change.
//
// Unauthenticated viewers go to the login page for the required role (admin
// has its own entry point). Authenticated viewers lacking the required role
// land on the home of their own highest-precedence role (admin >
// freelancer > client) rather than on a login page; only a user with no
// role at all falls through to explicitRedirect or the role's default.
// Admins implicitly satisfy freelancer- and client-gated areas.
func Evaluate(state authstate.State, required Required, explicitRedirect string) Decision {
	if state.Loading {
		return Decision{Outcome: OutcomeLoading}
	}

	if state.User == nil {
		if required == RequireAdmin {
			return Decision{Outcome: OutcomeRedirect, Target: AdminLoginPath}
		}
		return Decision{Outcome: OutcomeRedirect, Target: LoginPath}
	}

	access := state.Access
	var hasAccess bool
	defaultRedirect := LoginPath
	switch required {
	case RequireAdmin:
		hasAccess = access.IsAdmin
		defaultRedirect = AdminLoginPath
	case RequireFreelancer:
		hasAccess = access.IsFreelancer || access.IsAdmin
	case RequireClient:
		hasAccess = access.IsClient || access.IsAdmin
	}

	if hasAccess {
		return Decision{Outcome: OutcomeAllow}
	}

	switch {
	case access.IsAdmin:
		return Decision{Outcome: OutcomeRedirect, Target: AdminHome}
	case access.IsFreelancer:
		return Decision{Outcome: OutcomeRedirect, Target: FreelancerHome}
	case access.IsClient:
		return Decision{Outcome: OutcomeRedirect, Target: MarketplaceHome}
	}
	if explicitRedirect != "" {
		return Decision{Outcome: OutcomeRedirect, Target: explicitRedirect}
	}
	return Decision{Outcome: OutcomeRedirect, Target: defaultRedirect}
}

// EvaluateAdmin pre-binds the admin role.
func EvaluateAdmin(state authstate.State) Decision {
	return Evaluate(state, RequireAdmin, "")
}

// HomeFor returns the landing page for the actor's highest-precedence role;
// used as the post-login/post-sign-up destination.
func HomeFor(state authstate.State) string {
	switch {
	case state.Access.IsAdmin:
		return AdminHome
	case state.Access.IsFreelancer:
		return FreelancerHome
	case state.Access.IsClient:
		return MarketplaceHome
	}
	return LoginPath
}
