package models

import "time"

// Audit actions recorded for security-relevant events. One line is appended
// per event; the log is append-only and never rewritten.
const (
	AuditLoginSuccess  = "login_success"
	AuditLoginFailed   = "login_failed"
	AuditLoginBlocked  = "login_blocked"
	AuditLogout        = "logout"
	AuditKVSave        = "kv_save"
	AuditKVDelete      = "kv_delete"
	AuditDeleteBlocked = "delete_blocked"
	AuditItemAdd       = "item_add"
	AuditImport        = "import"
	AuditBackup        = "backup"
	AuditClientAdd     = "client_add"
	AuditClientUpdate  = "client_update"
	AuditClientDelete  = "client_delete"
	AuditPasswordReset = "password_reset"
	AuditResetRequest  = "reset_request"
	AuditResetBlocked  = "reset_blocked"
)

// AuditLine is one entry of the append-only audit log.
type AuditLine struct {
	// Time is when the event happened.
	Time time.Time `json:"time"`

	// IP is the network address the request came from.
	IP string `json:"ip"`

	// User is the authenticated operator, empty for pre-auth events.
	User string `json:"user"`

	// Action is one of the Audit* constants.
	Action string `json:"action"`

	// Details carries event-specific context (key names, record ids,
	// change summaries).
	Details map[string]any `json:"details,omitempty"`
}

// TableName returns the name of the database table
// associated with the AuditLine model.
func (a AuditLine) TableName() string {
	return "audit_log"
}
