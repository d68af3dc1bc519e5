package model

import "time"

type ActivityCategory string

const (
	CategoryAuth       ActivityCategory = "AUTH"
	CategorySecurity   ActivityCategory = "SECURITY"
	CategoryPermission ActivityCategory = "PERMISSION"
	CategoryUser       ActivityCategory = "USER"
	CategoryResource   ActivityCategory = "RESOURCE"
	CategorySystem     ActivityCategory = "SYSTEM"
)

const (
	ActionLogin                 = "LOGIN"
	ActionLoginFailed           = "LOGIN_FAILED"
	ActionLogout                = "LOGOUT"
	ActionTokenRefresh          = "TOKEN_REFRESH"
	ActionSessionExpired        = "SESSION_EXPIRED"
	ActionAuthRejected          = "AUTH_REJECTED"
	ActionPasswordChanged       = "PASSWORD_CHANGED"
	ActionUserCreated           = "USER_CREATED"
	ActionUserUpdated           = "USER_UPDATED"
	ActionUserDeleted           = "USER_DELETED"
	ActionCollectionGrantSet    = "COLLECTION_GRANT_SET"
	ActionCollectionGrantRevoke = "COLLECTION_GRANT_REVOKED"
	ActionItemGrantSet          = "ITEM_GRANT_SET"
	ActionItemGrantRevoke       = "ITEM_GRANT_REVOKED"
	ActionCollectionCreated     = "COLLECTION_CREATED"
	ActionItemCreated           = "ITEM_CREATED"
	ActionItemUpdated           = "ITEM_UPDATED"
	ActionItemDeleted           = "ITEM_DELETED"
	ActionServerError           = "SERVER_ERROR"
)

// AuditDetail is the payload half of an activity-log append.
type AuditDetail struct {
	Category    ActivityCategory `json:"category"`
	TargetID    *int64           `json:"targetId,omitempty"`
	Description string           `json:"description"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

type ActivityEntry struct {
	ID          string           `json:"id"`
	ActorID     *int64           `json:"actorId,omitempty"`
	Action      string           `json:"action"`
	Category    ActivityCategory `json:"category"`
	TargetID    *int64           `json:"targetId,omitempty"`
	Description string           `json:"description"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

type ActivityQuery struct {
	Action   string
	Category string
	ActorID  *int64
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// Int64Ptr is a small helper for optional ids in audit details.
func Int64Ptr(v int64) *int64 {
	return &v
}
