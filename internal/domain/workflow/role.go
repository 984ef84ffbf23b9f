package workflow

// Role is the coarse-grained permission class that authorizes a transition
type Role string

const (
	RoleSystem    Role = "system"
	RoleMarketing Role = "marketing"
	RoleBroker    Role = "broker"
	RoleAdmin     Role = "admin"
)

var validRoles = map[Role]bool{
	RoleSystem:    true,
	RoleMarketing: true,
	RoleBroker:    true,
	RoleAdmin:     true,
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the defined actor roles
func (r Role) IsValid() bool {
	return validRoles[r]
}
