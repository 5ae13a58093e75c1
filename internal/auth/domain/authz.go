package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Level is an authorization bitmask. Higher levels keep every bit of the
// levels below them, so authorization is a subset test.
type Level int

const (
	LevelCitizen      Level = 0
	LevelEmployee     Level = 1
	LevelEmployeePlus Level = 3
)

// ErrInvalidLevel is returned when a level is not one that can be granted.
var ErrInvalidLevel = errors.New("domain: invalid authorization level")

// IsAuthorized reports whether granted covers every bit of needed.
func IsAuthorized(granted, needed Level) bool {
	return needed&granted == needed
}

// Grantable reports whether l may be stored as an explicit grant. Citizen is
// the implicit default and is never stored; revoke instead.
func (l Level) Grantable() bool {
	return l == LevelEmployee || l == LevelEmployeePlus
}

func (l Level) String() string {
	switch l {
	case LevelCitizen:
		return "citizen"
	case LevelEmployee:
		return "employee"
	case LevelEmployeePlus:
		return "employee_plus"
	default:
		return strconv.Itoa(int(l))
	}
}

// ParseLevel accepts a level name or its numeric value.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citizen":
		return LevelCitizen, nil
	case "employee":
		return LevelEmployee, nil
	case "employee_plus", "employee-plus":
		return LevelEmployeePlus, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	l := Level(n)
	if l != LevelCitizen && !l.Grantable() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLevel, n)
	}
	return l, nil
}

// AuthzGrant is an explicit authorization record.
type AuthzGrant struct {
	Username string `json:"username"`
	Level    Level  `json:"authz_level"`
}

// AuthzAuditEntry is one append-only row of the authorization audit trail.
// Active is false for the row written when a grant is revoked; Level then
// holds the level that was revoked.
type AuthzAuditEntry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Level     Level     `json:"authz_level"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"ts"`
}
