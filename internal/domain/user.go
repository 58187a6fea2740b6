package domain

import (
	"fmt"
	"time"
)

// Role is the system permission level of a user.
type Role int16

// Ordinals match the values persisted in the users.role column.
const (
	RoleAdministrator Role = iota
	RoleCommonUser
	RoleSupervisor
	RoleGuest
)

var roleNames = [...]string{
	RoleAdministrator: "Administrator",
	RoleCommonUser:    "CommonUser",
	RoleSupervisor:    "Supervisor",
	RoleGuest:         "Guest",
}

// Roles lists every known role in ordinal order.
func Roles() []Role {
	return []Role{RoleAdministrator, RoleCommonUser, RoleSupervisor, RoleGuest}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r >= RoleAdministrator && r <= RoleGuest
}

// String returns the symbolic role name.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int16(r))
	}
	return roleNames[r]
}

// ParseRole converts a symbolic name into a Role.
func ParseRole(name string) (Role, error) {
	for _, r := range Roles() {
		if roleNames[r] == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// MarshalText renders the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int16(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is an account that can log in to the directory.
// Password holds the stored credential: a bcrypt hash, or cleartext under the legacy scheme.
type User struct {
	ID        int64
	Username  string
	Password  string
	Active    bool
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
