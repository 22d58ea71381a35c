package domain

// Role represents the authorization role of a user.
type Role string

const (
	RoleEmployee   Role = "EMPLOYEE"
	RoleHead       Role = "HEAD"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleHead, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// Principal is the acting identity for a single request, decoded from the
// auth token. It is never persisted by this service.
type Principal struct {
	ID           string
	Role         Role
	DepartmentID string
	FullName     string
}

// IsHeadOf checks if the principal is a department head for the given department.
func (p Principal) IsHeadOf(departmentID *string) bool {
	return p.Role == RoleHead && departmentID != nil && *departmentID == p.DepartmentID
}

// IsSuperAdmin reports whether the principal bypasses role and department scoping.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}
