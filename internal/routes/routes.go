package routes

import (
	"fmt"
	"path"
	"strings"
)

// returns the rules used by the portal
func DefaultRules() *Rules {
	return &Rules{
		PublicExact: []string{
			"/",
			"/auth/login",
			"/auth/register",
			"/auth/verify",
		},
		PublicPrefixes: []string{
			"/auth/verify",
		},
		RolePrefixes: []RolePrefix{
			{Prefix: "/student", Role: RoleStudent},
			{Prefix: "/teacher", Role: RoleTeacher},
		},
	}
}

// classifies a request path. first match wins: public exact, public prefix,
// role prefix, then requires-auth.
func (r *Rules) Classify(p string) Classification {
	p = normalize(p)

	for _, exact := range r.PublicExact {
		if p == exact {
			return Classification{Kind: KindPublic}
		}
	}

	for _, prefix := range r.PublicPrefixes {
		if isUnder(p, prefix) {
			return Classification{Kind: KindPublic}
		}
	}

	for _, rp := range r.RolePrefixes {
		if p == rp.Prefix || isUnder(p, rp.Prefix) {
			return Classification{Kind: KindRequiresRole, Role: rp.Role}
		}
	}

	return Classification{Kind: KindRequiresAuth}
}

// checks the rules for ambiguous overlaps
func (r *Rules) Validate() error {
	public := append(append([]string{}, r.PublicExact...), r.PublicPrefixes...)

	seen := make(map[string]Role, len(r.RolePrefixes))
	for _, rp := range r.RolePrefixes {
		if !strings.HasPrefix(rp.Prefix, "/") || rp.Prefix == "/" {
			return fmt.Errorf("role prefix %q must be a non-root absolute path", rp.Prefix)
		}

		if !rp.Role.Valid() {
			return fmt.Errorf("role prefix %q maps to unknown role %q", rp.Prefix, rp.Role)
		}

		if other, ok := seen[rp.Prefix]; ok {
			return fmt.Errorf("role prefix %q maps to both %q and %q", rp.Prefix, other, rp.Role)
		}
		seen[rp.Prefix] = rp.Role

		for _, other := range r.RolePrefixes {
			if other.Prefix != rp.Prefix && isUnder(other.Prefix, rp.Prefix) {
				return fmt.Errorf("role prefix %q is nested under %q", other.Prefix, rp.Prefix)
			}
		}

		for _, p := range public {
			if p == rp.Prefix || isUnder(p, rp.Prefix) || isUnder(rp.Prefix, p) {
				return fmt.Errorf("public path %q overlaps role prefix %q", p, rp.Prefix)
			}
		}
	}

	return nil
}

// returns the dashboard path for a role; unknown roles go to login
func Home(role Role) string {
	switch role {
	case RoleStudent:
		return StudentDashboardPath
	case RoleTeacher:
		return TeacherDashboardPath
	case RoleAdmin:
		return AdminDashboardPath
	default:
		return LoginPath
	}
}

// reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindRequiresAuth:
		return "requires_auth"
	case KindRequiresRole:
		return "requires_role"
	default:
		return "unknown"
	}
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return path.Clean(p)
}

// segment-aware prefix check: /student/x is under /student, /students is not
func isUnder(p, prefix string) bool {
	return strings.HasPrefix(p, prefix+"/")
}
