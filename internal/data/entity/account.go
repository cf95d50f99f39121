package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role string coming from a token claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleProvider, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Account is the common projection of users, providers and admins. A single
// role-keyed lookup returns it instead of branching over three tables at
// every call site.
type Account struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Role     Role
	Verified bool
}
