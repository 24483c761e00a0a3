package room

import (
	"errors"
	"testing"

	"github.com/mentorlink/notifier/internal/identity"
)

func TestAddress_String(t *testing.T) {
	tests := []struct {
		addr Address
		want string
	}{
		{ForUser("7"), "user:7"},
		{ForRole(identity.RoleMentor), "role:mentor"},
		{ForMentor("3"), "mentor:3"},
		{ForStudent("7"), "student:7"},
		{ForCohort("2024"), "cohort:2024"},
	}
	for _, tt := range tests {
		if got := tt.addr.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseAddress_RoundTrip(t *testing.T) {
	for _, raw := range []string{"user:7", "role:student", "mentor:3", "student:9", "cohort:2024"} {
		addr, err := ParseAddress(raw)
		if err != nil {
			t.Fatalf("ParseAddress(%q) returned error: %v", raw, err)
		}
		if addr.String() != raw {
			t.Errorf("round trip of %q produced %q", raw, addr.String())
		}
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, raw := range []string{"", "user", "user:", "group:5", ":7"} {
		_, err := ParseAddress(raw)
		if err == nil {
			t.Errorf("ParseAddress(%q) expected error, got nil", raw)
		}
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ParseAddress(%q) expected ErrInvalidAddress, got %v", raw, err)
		}
	}
}

func TestAddress_Joinable(t *testing.T) {
	student7 := identity.Identity{ID: "7", Role: identity.RoleStudent}
	mentor3 := identity.Identity{ID: "3", Role: identity.RoleMentor}

	tests := []struct {
		name string
		addr Address
		who  identity.Identity
		want bool
	}{
		{"student joins own student room", ForStudent("7"), student7, true},
		{"student may not join another student room", ForStudent("9"), student7, false},
		{"student may not join a mentor room", ForMentor("7"), student7, false},
		{"mentor joins own mentor room", ForMentor("3"), mentor3, true},
		{"mentor may not join another mentor room", ForMentor("4"), mentor3, false},
		{"mentor may not join a student room", ForStudent("3"), mentor3, false},
		{"any identity joins a cohort room", ForCohort("2024"), student7, true},
		{"user rooms are never joinable on request", ForUser("7"), student7, false},
		{"role rooms are never joinable on request", ForRole(identity.RoleStudent), student7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Joinable(tt.who); got != tt.want {
				t.Errorf("Joinable(%v) on %s = %v, want %v", tt.who, tt.addr, got, tt.want)
			}
		})
	}
}
