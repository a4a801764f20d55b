package auth

import "strings"

type Role string

const (
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
	RoleTrainer  Role = "trainer"
	RoleManager  Role = "manager"
)

var Roles = []Role{RoleHR, RoleEmployee, RoleTrainer, RoleManager}

func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range Roles {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Dashboard is the landing page a role is routed to after login.
func (r Role) Dashboard() string {
	switch r {
	case RoleHR:
		return "/dashboard/hr"
	case RoleEmployee:
		return "/dashboard/employee"
	case RoleTrainer:
		return "/dashboard/trainer"
	case RoleManager:
		return "/dashboard/manager"
	default:
		return "/login"
	}
}
