package jwtx

import (
	"fmt"
	"strings"
)

// MAC returns the signature segment of a compact JWS. The audit log records
// tokens by MAC so a log line can be matched to a token without leaking it.
func MAC(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", ErrDecode, len(parts))
	}
	return parts[2], nil
}
