package room

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mentorlink/notifier/internal/identity"
)

var ErrInvalidAddress = errors.New("invalid room address")

// Kind is the addressing dimension of a room.
type Kind string

const (
	// KindUser is the personal room every connection is auto-joined to.
	KindUser Kind = "user"

	// KindRole is the role-wide room every connection is auto-joined to.
	KindRole Kind = "role"

	// KindMentor is a mentor's personal broadcast room.
	KindMentor Kind = "mentor"

	// KindStudent is a student's personal broadcast room.
	KindStudent Kind = "student"

	// KindCohort is a broad broadcast grouping, open to any authenticated
	// connection.
	KindCohort Kind = "cohort"
)

// Address is a typed room address. Rooms are logical broadcast targets, not
// stored entities; an Address is only ever used as a membership key.
type Address struct {
	Kind Kind
	ID   string
}

func ForUser(id string) Address {
	return Address{Kind: KindUser, ID: id}
}

func ForRole(role identity.Role) Address {
	return Address{Kind: KindRole, ID: string(role)}
}

func ForMentor(id string) Address {
	return Address{Kind: KindMentor, ID: id}
}

func ForStudent(id string) Address {
	return Address{Kind: KindStudent, ID: id}
}

func ForCohort(id string) Address {
	return Address{Kind: KindCohort, ID: id}
}

// String renders the wire form of the address, e.g. "user:42".
func (a Address) String() string {
	return string(a.Kind) + ":" + a.ID
}

// ParseAddress parses the wire form produced by String.
func ParseAddress(s string) (Address, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	switch Kind(kind) {
	case KindUser, KindRole, KindMentor, KindStudent, KindCohort:
		return Address{Kind: Kind(kind), ID: id}, nil
	}
	return Address{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidAddress, kind)
}

// Joinable reports whether a connection owned by who may opt into this room.
// Mentor and student rooms require a matching id and role, cohort rooms are
// open to any authenticated connection. User and role rooms are assigned at
// handshake time and are never joinable on request.
func (a Address) Joinable(who identity.Identity) bool {
	switch a.Kind {
	case KindMentor:
		return who.Role == identity.RoleMentor && who.ID == a.ID
	case KindStudent:
		return who.Role == identity.RoleStudent && who.ID == a.ID
	case KindCohort:
		return true
	}
	return false
}
