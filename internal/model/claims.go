package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type SessionWarning struct {
	Shown        bool      `json:"shown"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// AccessClaims is the whole client-held session: identity plus inactivity bookkeeping.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID             int64           `json:"id"`
	Email              string          `json:"email"`
	Role               Role            `json:"role"`
	IsFirstLogin       bool            `json:"isFirstLogin"`
	IsProfileCompleted bool            `json:"isProfileCompleted"`
	LastActivity       time.Time       `json:"lastActivity"`
	TokenVersion       int             `json:"tokenVersion"`
	SessionWarning     *SessionWarning `json:"sessionWarning,omitempty"`
	Type               TokenType       `json:"typ"`
}

// WarningPending reports whether a warning was shown and not yet acknowledged.
func (c *AccessClaims) WarningPending() bool {
	return c.SessionWarning != nil && c.SessionWarning.Shown && !c.SessionWarning.Acknowledged
}

type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID       int64     `json:"id"`
	TokenVersion int       `json:"tokenVersion"`
	Type         TokenType `json:"typ"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenVersion int
}
