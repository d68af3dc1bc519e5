package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
	"caseguard/pkg/apierror"
)

const (
	HeaderAuthorization   = "Authorization"
	HeaderKeepAlive       = "X-Keep-Alive"
	HeaderSessionWarning  = "X-Session-Warning"
	HeaderTimeRemaining   = "X-Time-Remaining"
	HeaderWarningType     = "X-Warning-Type"
	HeaderSessionExtended = "X-Session-Extended"

	keepAlivePath = "/auth/keep-alive"
)

type accessTokens interface {
	ParseAccess(token string) (*model.AccessClaims, error)
	Renew(claims *model.AccessClaims) (string, error)
	Resign(claims *model.AccessClaims) (string, error)
}

type principalFinder interface {
	FindByID(ctx context.Context, id int64) (model.Principal, error)
}

type auditAppender interface {
	Append(actorID int64, action string, detail model.AuditDetail)
}

type sessionObserver interface {
	SessionDecision(action string)
	AuthRejected(code string)
}

// SessionMonitor authenticates bearer tokens and slides the inactivity window. All session
// state lives in the token; renewals and warnings travel back in response headers.
type SessionMonitor struct {
	tokens     accessTokens
	principals principalFinder
	policy     *session.Policy
	audit      auditAppender
	observer   sessionObserver
	responder  *respond.Responder
	now        func() time.Time
}

func NewSessionMonitor(tokens accessTokens, principals principalFinder, policy *session.Policy, audit auditAppender, observer sessionObserver, responder *respond.Responder) *SessionMonitor {
	return &SessionMonitor{
		tokens:     tokens,
		principals: principals,
		policy:     policy,
		audit:      audit,
		observer:   observer,
		responder:  responder,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. It should match the token issuer's clock.
func (m *SessionMonitor) SetClock(now func() time.Time) {
	m.now = now
}

func (m *SessionMonitor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, 0, apierror.Unauthorized("missing or invalid authorization header"))
			return
		}

		claims, err := m.tokens.ParseAccess(token)
		if err != nil {
			m.reject(w, r, 0, err)
			return
		}

		now := m.now()
		decision := m.policy.Evaluate(claims, now, isKeepAlive(r))
		if decision.Action == session.ActionExpire {
			m.reject(w, r, claims.UserID, apierror.SessionExpired("session expired due to inactivity"))
			return
		}

		principal, err := m.principals.FindByID(r.Context(), claims.UserID)
		if errors.Is(err, model.ErrPrincipalNotFound) {
			m.reject(w, r, claims.UserID, apierror.InvalidToken("invalid token"))
			return
		}
		if err != nil {
			m.responder.Error(w, r, err)
			return
		}
		if !principal.IsActive {
			m.reject(w, r, principal.ID, apierror.AccountDisabled())
			return
		}

		current, err := m.apply(w, decision, claims, principal)
		if err != nil {
			m.responder.Error(w, r, err)
			return
		}

		if m.observer != nil {
			m.observer.SessionDecision(decision.Action.String())
		}

		ctx := session.WithState(r.Context(), session.State{
			Claims:    current,
			Principal: principal,
			Action:    decision.Action,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// apply carries out the decision and returns the claims now in force.
func (m *SessionMonitor) apply(w http.ResponseWriter, decision session.Decision, claims *model.AccessClaims, principal model.Principal) (*model.AccessClaims, error) {
	h := w.Header()

	switch decision.Action {
	case session.ActionRenew:
		renewed := decision.Claims
		renewed.Email = principal.Email
		renewed.Role = principal.Role
		renewed.IsFirstLogin = principal.IsFirstLogin
		renewed.IsProfileCompleted = principal.IsProfileCompleted

		token, err := m.tokens.Renew(renewed)
		if err != nil {
			return nil, err
		}
		h.Set(HeaderAuthorization, "Bearer "+token)
		h.Set(HeaderSessionExtended, "true")
		h.Set(HeaderTimeRemaining, seconds(decision.TimeRemaining))
		return renewed, nil

	case session.ActionWarn:
		token, err := m.tokens.Resign(decision.Claims)
		if err != nil {
			return nil, err
		}
		h.Set(HeaderAuthorization, "Bearer "+token)
		setWarningHeaders(h, decision.TimeRemaining)
		return decision.Claims, nil

	case session.ActionRewarn:
		setWarningHeaders(h, decision.TimeRemaining)
	}

	return claims, nil
}

func (m *SessionMonitor) reject(w http.ResponseWriter, r *http.Request, actorID int64, err error) {
	code := apierror.CodeOf(err)
	if code == "" {
		m.responder.Error(w, r, err)
		return
	}

	if m.observer != nil {
		m.observer.AuthRejected(code)
	}

	action := model.ActionAuthRejected
	category := model.CategorySecurity
	if code == apierror.CodeSessionExpired {
		action = model.ActionSessionExpired
		category = model.CategoryAuth
	}

	detail := model.AuditDetail{
		Category:    category,
		Description: "request rejected by session monitor",
		Metadata: map[string]any{
			"code":   code,
			"path":   r.URL.Path,
			"method": r.Method,
			"ip":     ClientIP(r),
		},
	}
	if actorID > 0 {
		detail.TargetID = model.Int64Ptr(actorID)
	}
	m.audit.Append(actorID, action, detail)

	m.responder.Error(w, r, err)
}

func setWarningHeaders(h http.Header, remaining time.Duration) {
	h.Set(HeaderSessionWarning, "true")
	h.Set(HeaderTimeRemaining, seconds(remaining))
	h.Set(HeaderWarningType, "inactivity")
}

func seconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get(HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func isKeepAlive(r *http.Request) bool {
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderKeepAlive)), "true") {
		return true
	}
	return r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, keepAlivePath)
}
