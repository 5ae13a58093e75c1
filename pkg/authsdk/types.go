package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	// Error is the error code (e.g., "invalid_request", "invalid_token")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Authorization Types
// ============================================================================

// AuthzGrant is the authorization level of one username.
type AuthzGrant struct {
	Username string `json:"username" example:"evert"`

	// Level is the authorization bitmask: 0 citizen, 1 employee, 3 employee plus.
	Level int `json:"authz_level" example:"1"`

	// LevelName is the readable name of Level.
	LevelName string `json:"level" example:"employee"`
}

// SetAuthzRequest grants a level. Level accepts 1 and 3 only; revoke a grant
// to return a username to citizen.
type SetAuthzRequest struct {
	Level int `json:"authz_level" example:"3"`
}

// ListAuthzResponse lists every explicit grant.
type ListAuthzResponse struct {
	Grants []AuthzGrant `json:"grants"`
	Count  int          `json:"count"`
}

// AuthzAuditEntry is one row of the authorization audit trail.
type AuthzAuditEntry struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Level     int    `json:"authz_level"`
	Active    bool   `json:"active"`
	Timestamp string `json:"ts"` // RFC3339
}

// AuthzAuditResponse is the audit trail of one username, oldest first.
type AuthzAuditResponse struct {
	Username string            `json:"username"`
	Entries  []AuthzAuditEntry `json:"entries"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the authorization store status
	Database string `json:"database"`

	// Signer indicates whether both token builders can sign and verify
	Signer string `json:"signer"`
}
