package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of caller roles. Every authenticated route declares
// which roles it accepts.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProfessor Role = "PROFESSOR"
	RoleAluno     Role = "ALUNO"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleAluno:
		return true
	}
	return false
}

// ParseRole validates a role string coming off the wire.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Principal is the verified identity extracted from a request's token.
// It is never persisted; it is rebuilt from the token on every request.
type Principal struct {
	Subject   uuid.UUID
	Role      Role
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
