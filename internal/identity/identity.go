package identity

// Role is the portal-wide role carried by a verified credential.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// Valid reports whether the role is one the portal issues tokens for.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

// Identity is the authenticated user attached to a connection at handshake
// time. It is derived once from a verified credential and never changes for
// the lifetime of the connection.
type Identity struct {
	// ID is the unique identifier of the user.
	ID string

	// Role is the user's portal role.
	Role Role

	// DisplayName is the human-readable name carried by the credential.
	DisplayName string
}
