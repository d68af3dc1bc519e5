// Package session decides, per request, what to do with a client-held access token
// based on how long the session has been idle.
package session

import (
	"time"

	"caseguard/internal/config"
	"caseguard/internal/model"
)

type Action int

const (
	// ActionPass forwards the request with the token untouched.
	ActionPass Action = iota
	// ActionRenew re-signs the token with lastActivity=now and no warning.
	ActionRenew
	// ActionWarn re-signs the token carrying a fresh, unacknowledged warning.
	ActionWarn
	// ActionRewarn repeats the warning headers without re-signing.
	ActionRewarn
	// ActionExpire rejects the request with SESSION_EXPIRED.
	ActionExpire
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionRenew:
		return "renew"
	case ActionWarn:
		return "warn"
	case ActionRewarn:
		return "rewarn"
	case ActionExpire:
		return "expire"
	default:
		return "unknown"
	}
}

type Decision struct {
	Action Action
	// Claims is set for ActionRenew and ActionWarn; it is a modified copy of the input.
	Claims *model.AccessClaims
	// Inactivity is now minus claims.LastActivity.
	Inactivity time.Duration
	// TimeRemaining is the idle time left before MaxInactivityTime, floored at zero.
	TimeRemaining time.Duration
}

type Policy struct {
	cfg config.SessionConfig
}

func NewPolicy(cfg config.SessionConfig) *Policy {
	return &Policy{cfg: cfg}
}

func (p *Policy) Config() config.SessionConfig {
	return p.cfg
}

// Evaluate is a pure function of the claims and the supplied instant. The input claims are
// never mutated. keepAlive forces renewal when the session is not already expired.
func (p *Policy) Evaluate(claims *model.AccessClaims, now time.Time, keepAlive bool) Decision {
	inactivity := now.Sub(claims.LastActivity)
	if inactivity < 0 {
		inactivity = 0
	}

	decision := Decision{
		Action:        ActionPass,
		Inactivity:    inactivity,
		TimeRemaining: p.remaining(inactivity),
	}

	switch {
	case inactivity > p.cfg.MaxInactivityTime+p.cfg.GracePeriod:
		decision.Action = ActionExpire
		decision.TimeRemaining = 0

	case keepAlive || inactivity > p.cfg.MaxInactivityTime-p.cfg.TokenRefreshThreshold:
		renewed := cloneClaims(claims)
		renewed.LastActivity = now
		renewed.SessionWarning = nil
		decision.Action = ActionRenew
		decision.Claims = renewed
		decision.TimeRemaining = p.cfg.MaxInactivityTime

	case inactivity > p.cfg.MaxInactivityTime-p.cfg.WarningTime && !warningShown(claims):
		warned := cloneClaims(claims)
		warned.SessionWarning = &model.SessionWarning{Shown: true, Timestamp: now}
		decision.Action = ActionWarn
		decision.Claims = warned

	case claims.WarningPending():
		decision.Action = ActionRewarn
	}

	return decision
}

func (p *Policy) remaining(inactivity time.Duration) time.Duration {
	left := p.cfg.MaxInactivityTime - inactivity
	if left < 0 {
		return 0
	}
	return left
}

func warningShown(claims *model.AccessClaims) bool {
	return claims.SessionWarning != nil && claims.SessionWarning.Shown
}

func cloneClaims(claims *model.AccessClaims) *model.AccessClaims {
	out := *claims
	if claims.SessionWarning != nil {
		w := *claims.SessionWarning
		out.SessionWarning = &w
	}
	return &out
}
