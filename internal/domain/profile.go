package domain

import "time"

// Department groups profiles and owns tasks routed to it.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Profile is a registered user of the dashboard.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
}

// InDepartment checks if the profile belongs to the given department.
func (p *Profile) InDepartment(departmentID string) bool {
	return p.DepartmentID != nil && *p.DepartmentID == departmentID
}
