package guard

import (
	"testing"

	"github.com/freelaz/marketplace-api/internal/authstate"
	"github.com/freelaz/marketplace-api/internal/core/domain"
)

func stateFor(user bool, profileRole string, roles ...domain.AppRole) authstate.State {
	s := authstate.State{Roles: domain.NewRoleSet(roles...)}
	if user {
		s.User = &domain.User{ID: "u1", Email: "u1@example.com"}
	}
	var profile *domain.Profile
	if profileRole != "" {
		profile = &domain.Profile{ID: "u1", Role: profileRole}
		s.Profile = profile
	}
	s.Access = domain.DeriveAccess(profile, s.Roles)
	return s
}

func TestEvaluate_LoadingNeverRedirects(t *testing.T) {
	for _, required := range []Required{RequireClient, RequireFreelancer, RequireAdmin} {
		for _, state := range []authstate.State{
			{Loading: true},
			func() authstate.State { s := stateFor(true, "client", domain.AppRoleCustomer); s.Loading = true; return s }(),
			func() authstate.State { s := stateFor(true, "", domain.AppRoleAdmin); s.Loading = true; return s }(),
		} {
			d := Evaluate(state, required, "")
			if d.Outcome != OutcomeLoading {
				t.Fatalf("required=%s: loading state must not decide, got %+v", required, d)
			}
		}
	}
}

func TestEvaluate_UnauthenticatedRedirectsToLogin(t *testing.T) {
	state := stateFor(false, "")

	if d := Evaluate(state, RequireClient, ""); d.Outcome != OutcomeRedirect || d.Target != LoginPath {
		t.Fatalf("client route: got %+v", d)
	}
	if d := Evaluate(state, RequireFreelancer, ""); d.Outcome != OutcomeRedirect || d.Target != LoginPath {
		t.Fatalf("freelancer route: got %+v", d)
	}
	// Admin areas have their own authentication entry point.
	if d := Evaluate(state, RequireAdmin, ""); d.Outcome != OutcomeRedirect || d.Target != AdminLoginPath {
		t.Fatalf("admin route: got %+v", d)
	}
}

func TestEvaluate_AdminSupersetProperty(t *testing.T) {
	// A user with only the admin assignment passes every required role.
	state := stateFor(true, "", domain.AppRoleAdmin)
	for _, required := range []Required{RequireClient, RequireFreelancer, RequireAdmin} {
		if d := Evaluate(state, required, ""); d.Outcome != OutcomeAllow {
			t.Fatalf("admin must satisfy %s, got %+v", required, d)
		}
	}
}

func TestEvaluate_RoleMatches(t *testing.T) {
	client := stateFor(true, "client", domain.AppRoleCustomer)
	if d := Evaluate(client, RequireClient, ""); d.Outcome != OutcomeAllow {
		t.Fatalf("client on client route: got %+v", d)
	}

	freelancer := stateFor(true, "freelancer", domain.AppRoleSeller)
	if d := Evaluate(freelancer, RequireFreelancer, ""); d.Outcome != OutcomeAllow {
		t.Fatalf("freelancer on freelancer route: got %+v", d)
	}
}

func TestEvaluate_WrongRoleRedirectsToOwnHome(t *testing.T) {
	// A client on a freelancer route lands on the marketplace, not on a
	// login page.
	client := stateFor(true, "client", domain.AppRoleCustomer)
	if d := Evaluate(client, RequireFreelancer, ""); d.Outcome != OutcomeRedirect || d.Target != MarketplaceHome {
		t.Fatalf("client on freelancer route: got %+v", d)
	}
	if d := Evaluate(client, RequireAdmin, ""); d.Outcome != OutcomeRedirect || d.Target != MarketplaceHome {
		t.Fatalf("client on admin route: got %+v", d)
	}

	freelancer := stateFor(true, "freelancer", domain.AppRoleSeller)
	if d := Evaluate(freelancer, RequireClient, ""); d.Outcome != OutcomeRedirect || d.Target != FreelancerHome {
		t.Fatalf("freelancer on client route: got %+v", d)
	}
}

func TestEvaluate_RedirectPrecedence(t *testing.T) {
	// Non-exclusive flags: the highest-precedence role decides the
	// redirect. An admin+freelancer denied an admin-only... cannot happen;
	// use a freelancer+client on an admin route instead.
	both := stateFor(true, "freelancer", domain.AppRoleSeller, domain.AppRoleCustomer)
	if d := Evaluate(both, RequireAdmin, ""); d.Outcome != OutcomeRedirect || d.Target != FreelancerHome {
		t.Fatalf("freelancer+client precedence: got %+v", d)
	}
}

func TestEvaluate_NoRoleFallsBackToExplicitRedirect(t *testing.T) {
	// Authenticated but unprovisioned: no flags at all.
	state := stateFor(true, "")

	if d := Evaluate(state, RequireClient, "/onboarding"); d.Outcome != OutcomeRedirect || d.Target != "/onboarding" {
		t.Fatalf("explicit redirect: got %+v", d)
	}
	if d := Evaluate(state, RequireClient, ""); d.Outcome != OutcomeRedirect || d.Target != LoginPath {
		t.Fatalf("default redirect: got %+v", d)
	}
	if d := Evaluate(state, RequireAdmin, ""); d.Outcome != OutcomeRedirect || d.Target != AdminLoginPath {
		t.Fatalf("admin default redirect: got %+v", d)
	}
}

func TestEvaluateAdmin(t *testing.T) {
	if d := EvaluateAdmin(stateFor(true, "", domain.AppRoleAdmin)); d.Outcome != OutcomeAllow {
		t.Fatalf("admin: got %+v", d)
	}
	if d := EvaluateAdmin(stateFor(false, "")); d.Outcome != OutcomeRedirect || d.Target != AdminLoginPath {
		t.Fatalf("anonymous: got %+v", d)
	}
}

func TestHomeFor(t *testing.T) {
	cases := []struct {
		state authstate.State
		want  string
	}{
		{stateFor(true, "", domain.AppRoleAdmin), AdminHome},
		{stateFor(true, "freelancer", domain.AppRoleSeller), FreelancerHome},
		{stateFor(true, "client", domain.AppRoleCustomer), MarketplaceHome},
		{stateFor(true, "freelancer", domain.AppRoleAdmin), AdminHome}, // precedence
		{stateFor(true, ""), LoginPath},
	}
	for i, tc := range cases {
		if got := HomeFor(tc.state); got != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}
