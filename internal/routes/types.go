package routes

// a user's role as carried in the session token
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// redirect targets
const (
	LoginPath            = "/auth/login"
	StudentDashboardPath = "/student/dashboard"
	TeacherDashboardPath = "/teacher/dashboard"
	AdminDashboardPath   = "/admin/dashboard"
)

// three-valued route classification
type Kind int

const (
	KindPublic Kind = iota
	KindRequiresAuth
	KindRequiresRole
)

// result of classifying a path; Role is set only for KindRequiresRole
type Classification struct {
	Kind Kind
	Role Role
}

// binds a path prefix to the role allowed under it
type RolePrefix struct {
	Prefix string
	Role   Role
}

// static route classification rules
type Rules struct {
	// paths that are public on exact match
	PublicExact []string

	// prefixes whose every sub-path is public
	PublicPrefixes []string

	// prefixes reserved to a single role
	RolePrefixes []RolePrefix
}
