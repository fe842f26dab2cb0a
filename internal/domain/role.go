package domain

import "strings"

// Role is the marketplace role a caller registers as.
type Role string

const (
	RoleNone         Role = ""
	RoleFarmer       Role = "Farmer"
	RoleDistributor  Role = "Distributor"
	RoleTransporter  Role = "Transporter"
	RoleBuyer        Role = "Buyer"
	RoleVeterinarian Role = "Veterinarian"
)

// roleMenu maps the digit entered on the role-selection screen to a role.
var roleMenu = map[string]Role{
	"1": RoleFarmer,
	"2": RoleDistributor,
	"3": RoleTransporter,
	"4": RoleBuyer,
	"5": RoleVeterinarian,
}

// RoleForSelection resolves a role-menu entry.
func RoleForSelection(selection string) (Role, bool) {
	r, ok := roleMenu[strings.TrimSpace(selection)]
	return r, ok
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Valid reports whether r is one of the five registrable roles.
func (r Role) Valid() bool {
	_, ok := roleSpecs[r]
	return ok
}
