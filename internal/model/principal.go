package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCollaborator Role = "COLLABORATOR"
)

// ParseRole normalizes a role string. The second return is false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCollaborator:
		return RoleCollaborator, true
	default:
		return "", false
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type Principal struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	IsActive           bool      `json:"isActive"`
	IsFirstLogin       bool      `json:"isFirstLogin"`
	IsProfileCompleted bool      `json:"isProfileCompleted"`
	TokenVersion       int       `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PrincipalPatch carries a partial update; nil fields are left untouched.
type PrincipalPatch struct {
	FullName           *string
	PasswordHash       *string
	Role               *Role
	IsActive           *bool
	IsFirstLogin       *bool
	IsProfileCompleted *bool
}

func (p PrincipalPatch) Empty() bool {
	return p.FullName == nil && p.PasswordHash == nil && p.Role == nil &&
		p.IsActive == nil && p.IsFirstLogin == nil && p.IsProfileCompleted == nil
}

// Apply returns a copy of principal with the patch applied.
func (p PrincipalPatch) Apply(principal Principal) Principal {
	if p.FullName != nil {
		principal.FullName = *p.FullName
	}
	if p.PasswordHash != nil {
		principal.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		principal.Role = *p.Role
	}
	if p.IsActive != nil {
		principal.IsActive = *p.IsActive
	}
	if p.IsFirstLogin != nil {
		principal.IsFirstLogin = *p.IsFirstLogin
	}
	if p.IsProfileCompleted != nil {
		principal.IsProfileCompleted = *p.IsProfileCompleted
	}
	return principal
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
