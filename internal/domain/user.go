package domain

import "time"

// UserRole is the closed set of actor roles.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleAgent          UserRole = "agent"
	RoleTechnician     UserRole = "technician"
	RoleDepartmentHead UserRole = "department-head"
	RoleUser           UserRole = "user"
)

// ValidRole reports whether r is a known role.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleTechnician, RoleDepartmentHead, RoleUser:
		return true
	}
	return false
}

// Privileged reports whether the role sees tickets beyond its own.
func (r UserRole) Privileged() bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleTechnician
}

// User is the directory entry for anyone who can log in, from end-users
// to administrators. DepartmentID is only meaningful for department heads.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           UserRole
	OrganizationID string
	DepartmentID   *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
