package domain

// Caller is the verified identity attached to a request by the
// credential-verification layer.
type Caller struct {
	ID    string
	Email string
	Role  Role
}

// Privileged reports whether the caller bypasses debiting.
func (c Caller) Privileged() bool {
	return c.Role.Privileged()
}

// Role represents a caller's access level.
type Role string

const (
	// RoleUser is an ordinary caller; generation requests are debited.
	RoleUser Role = "user"

	// RoleAdmin bypasses debiting but is still audited.
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Privileged reports whether the role bypasses debiting.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}
