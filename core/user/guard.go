package user

// Identity is what an authenticated session exposes about its user.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Decision is the outcome of Authorize.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// RoleSet is the set of roles admitted by a guard.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Authorize decides whether `identity` may enter a surface restricted to `allowed`.
// A nil identity is Unauthenticated; a role outside `allowed` is Forbidden.
func Authorize(identity *Identity, allowed RoleSet) Decision {
	if identity == nil {
		return Unauthenticated
	}
	if !allowed.Has(identity.Role) {
		return Forbidden
	}
	return Allow
}
