package domain

import "fmt"

// Role is the closed set of actor roles. The employee family shares the
// employee-level permissions; quality assurance additionally reviews tasks.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleManager          Role = "manager"
	RoleEmployee         Role = "employee"
	RoleDeveloper        Role = "developer"
	RoleDesigner         Role = "designer"
	RoleQualityAssurance Role = "qualityAssurance"
)

// RoleFamily groups roles for authorization decisions.
type RoleFamily int

const (
	FamilyUnknown RoleFamily = iota
	FamilyAdmin
	FamilyManager
	FamilyEmployee
)

// ParseRole validates a wire value. An empty value yields the default role.
func ParseRole(raw string) (Role, error) {
	if raw == "" {
		return RoleEmployee, nil
	}
	role := Role(raw)
	if role.Family() == FamilyUnknown {
		return "", fmt.Errorf("invalid role %q", raw)
	}
	return role, nil
}

// Family returns the family the role belongs to.
func (r Role) Family() RoleFamily {
	switch r {
	case RoleAdmin:
		return FamilyAdmin
	case RoleManager:
		return FamilyManager
	case RoleEmployee, RoleDeveloper, RoleDesigner, RoleQualityAssurance:
		return FamilyEmployee
	default:
		return FamilyUnknown
	}
}

func (r Role) IsAdmin() bool   { return r == RoleAdmin }
func (r Role) IsManager() bool { return r == RoleManager }
func (r Role) IsQA() bool      { return r == RoleQualityAssurance }

// IsEmployeeFamily reports whether r is employee, developer, designer or QA.
func (r Role) IsEmployeeFamily() bool { return r.Family() == FamilyEmployee }

func (r Role) String() string { return string(r) }

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee, RoleDeveloper, RoleDesigner, RoleQualityAssurance}
}
