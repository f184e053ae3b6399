package model

import (
	"fmt"
	"strings"
)

// Role is a privilege level. Higher values include the lower ones.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleSeniorModerator
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:            "user",
	RoleModerator:       "moderator",
	RoleSeniorModerator: "senior_moderator",
	RoleAdmin:           "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole converts a role name into a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}
