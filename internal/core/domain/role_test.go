package domain

import "testing"

func TestAppRoleForProfileRole(t *testing.T) {
	if got := AppRoleForProfileRole(ProfileRoleClient); got != AppRoleCustomer {
		t.Fatalf("client should map to customer, got %s", got)
	}
	if got := AppRoleForProfileRole(ProfileRoleFreelancer); got != AppRoleSeller {
		t.Fatalf("freelancer should map to seller, got %s", got)
	}
}

func TestParseProfileRole(t *testing.T) {
	if _, ok := ParseProfileRole("client"); !ok {
		t.Fatalf("client should parse")
	}
	if _, ok := ParseProfileRole("freelancer"); !ok {
		t.Fatalf("freelancer should parse")
	}
	// No admin sign-up path.
	if _, ok := ParseProfileRole("admin"); ok {
		t.Fatalf("admin must not parse as a sign-up role")
	}
	if _, ok := ParseProfileRole(""); ok {
		t.Fatalf("empty role must not parse")
	}
}

func TestDeriveAccess(t *testing.T) {
	cases := []struct {
		name    string
		profile *Profile
		roles   RoleSet
		want    Access
	}{
		{
			name:    "no data",
			profile: nil,
			roles:   NewRoleSet(),
			want:    Access{},
		},
		{
			name:    "client via profile",
			profile: &Profile{Role: "client"},
			roles:   NewRoleSet(),
			want:    Access{IsClient: true},
		},
		{
			name:    "client via role assignment",
			profile: nil,
			roles:   NewRoleSet(AppRoleCustomer),
			want:    Access{IsClient: true},
		},
		{
			name:    "freelancer via profile",
			profile: &Profile{Role: "freelancer"},
			roles:   NewRoleSet(),
			want:    Access{IsFreelancer: true},
		},
		{
			name:    "freelancer via seller assignment",
			profile: nil,
			roles:   NewRoleSet(AppRoleSeller),
			want:    Access{IsFreelancer: true},
		},
		{
			name:    "admin only",
			profile: nil,
			roles:   NewRoleSet(AppRoleAdmin),
			want:    Access{IsAdmin: true},
		},
		{
			name:    "flags are not mutually exclusive",
			profile: &Profile{Role: "freelancer"},
			roles:   NewRoleSet(AppRoleAdmin, AppRoleCustomer),
			want:    Access{IsAdmin: true, IsFreelancer: true, IsClient: true},
		},
		{
			name:    "unknown profile role contributes nothing",
			profile: &Profile{Role: "something-else"},
			roles:   NewRoleSet(),
			want:    Access{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveAccess(tc.profile, tc.roles); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRoleSet(t *testing.T) {
	s := NewRoleSet(AppRoleAdmin, AppRoleAdmin, AppRoleSeller)
	if len(s) != 2 {
		t.Fatalf("expected set semantics, got %d entries", len(s))
	}
	if !s.Has(AppRoleAdmin) || !s.Has(AppRoleSeller) {
		t.Fatalf("missing expected roles")
	}
	if s.Has(AppRoleCustomer) {
		t.Fatalf("unexpected customer role")
	}
}
