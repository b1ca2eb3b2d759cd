package model

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// Authorization predicates, one per protected operation group. Kept on
// the role type so they are testable without the HTTP transport.

// CanManageCatalog reports whether the role may create or modify
// courses, books and tests.
func (r Role) CanManageCatalog() bool {
	return r == RolePublisher || r == RoleAdmin
}

// CanManageUsers reports whether the role may administer user accounts.
func (r Role) CanManageUsers() bool {
	return r == RolePublisher || r == RoleAdmin
}

type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Role           Role   `json:"role"`
	EmailVerified  bool   `json:"email_verified"`

	// One-time token state; only the hashes are ever persisted.
	EmailVerifyTokenHash   *string    `json:"-"`
	EmailVerifyExpire      *time.Time `json:"-"`
	ResetPasswordTokenHash *string    `json:"-"`
	ResetPasswordExpire    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
