package models

import "strings"

// Role is the position a member holds inside an organization.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManagement Role = "management"
)

// ParseRole normalizes a raw role string.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

func IsValidRole(role Role) bool {
	switch role {
	case RoleEmployee, RoleManagement:
		return true
	default:
		return false
	}
}
