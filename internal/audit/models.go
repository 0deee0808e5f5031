package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated. Only retention cleanup deletes them.
// - Action is required; everything else is best-effort context.
type Event struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId,omitempty"`
	Action      Action         `json:"action"`
	Resource    string         `json:"resource,omitempty"`
	ResourceID  string         `json:"resourceId,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

type Action string

const (
	ActionCreate     Action = "CREATE"
	ActionUpdate     Action = "UPDATE"
	ActionDelete     Action = "DELETE"
	ActionActivate   Action = "ACTIVATE"
	ActionDeactivate Action = "DEACTIVATE"
	ActionPay        Action = "PAY"
	ActionLogin      Action = "LOGIN"
	ActionLogout     Action = "LOGOUT"
	ActionRefresh    Action = "REFRESH"
)

// Count is one bucket of a grouped projection.
type Count struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Stats groups the log by action, resource and acting user.
type Stats struct {
	Total      int64   `json:"total"`
	ByAction   []Count `json:"byAction"`
	ByResource []Count `json:"byResource"`
	ByUser     []Count `json:"byUser"`
}
