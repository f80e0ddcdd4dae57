package domain

// AppRole is the authorization role vocabulary stored in the user_roles
// relation. It is deliberately distinct from ProfileRole: the relation
// predates the freelancer product and kept its original enum values.
type AppRole string

const (
	AppRoleAdmin    AppRole = "admin"
	AppRoleSeller   AppRole = "seller"
	AppRoleCustomer AppRole = "customer"
)

// ProfileRole is the role a user picks at sign-up and the label stored on
// their profile row.
type ProfileRole string

const (
	ProfileRoleClient     ProfileRole = "client"
	ProfileRoleFreelancer ProfileRole = "freelancer"
)

// ParseProfileRole validates a sign-up role choice. There is deliberately no
// admin value here: admins are provisioned out-of-band, never via sign-up.
func ParseProfileRole(s string) (ProfileRole, bool) {
	switch ProfileRole(s) {
	case ProfileRoleClient, ProfileRoleFreelancer:
		return ProfileRole(s), true
	}
	return "", false
}

// AppRoleForProfileRole is the total mapping between the sign-up vocabulary
// and the user_roles enum: client → customer, freelancer → seller.
// Flagged for product review: "seller" conflates marketplace sellers and
// freelance workers, but the stored values must not diverge from this table.
func AppRoleForProfileRole(r ProfileRole) AppRole {
	if r == ProfileRoleFreelancer {
		return AppRoleSeller
	}
	return AppRoleCustomer
}

// RoleSet is the set of AppRoles assigned to a user. A user may hold several
// roles at once; nothing here assumes exclusivity.
type RoleSet map[AppRole]struct{}

func NewRoleSet(roles ...AppRole) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r AppRole) bool {
	_, ok := s[r]
	return ok
}

// Slice returns the roles in an unspecified order.
func (s RoleSet) Slice() []AppRole {
	out := make([]AppRole, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	return out
}

// Access holds the derived access flags. The flags are not mutually
// exclusive; consumers that need a single answer must apply the precedence
// admin > freelancer > client.
type Access struct {
	IsAdmin      bool `json:"is_admin"`
	IsFreelancer bool `json:"is_freelancer"`
	IsClient     bool `json:"is_client"`
}

// DeriveAccess computes the access flags from the profile row and the role
// assignment set. Either input may be nil/empty (e.g. after a partially
// failed provisioning); absent data simply contributes no flags.
func DeriveAccess(profile *Profile, roles RoleSet) Access {
	var profileRole ProfileRole
	if profile != nil {
		profileRole = ProfileRole(profile.Role)
	}
	return Access{
		IsAdmin:      roles.Has(AppRoleAdmin),
		IsFreelancer: profileRole == ProfileRoleFreelancer || roles.Has(AppRoleSeller),
		IsClient:     profileRole == ProfileRoleClient || roles.Has(AppRoleCustomer),
	}
}
