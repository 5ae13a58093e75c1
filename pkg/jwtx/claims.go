package jwtx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// Registered and service specific claim names.
const (
	ClaimIssuedAt     = "iat"
	ClaimExpiresAt    = "exp"
	ClaimSubject      = "sub"
	ClaimAuthz        = "authz"
	ClaimOrigIssuedAt = "orig_iat"
)

// ClaimSet is an immutable set of JWT claims. Values are normalised to what a
// JSON round trip yields (int64 for integral numbers, float64 otherwise,
// map[string]any and []any for nested values) so a decoded set compares
// equal to the one that was encoded.
type ClaimSet struct {
	m map[string]any
}

// NewClaimSet copies and normalises claims.
func NewClaimSet(claims map[string]any) (ClaimSet, error) {
	m, err := normalize(claims)
	if err != nil {
		return ClaimSet{}, err
	}
	return ClaimSet{m: m}, nil
}

// Len returns the number of claims.
func (c ClaimSet) Len() int { return len(c.m) }

// Has reports whether the claim is present, even if its value is null.
func (c ClaimSet) Has(name string) bool {
	_, ok := c.m[name]
	return ok
}

// Get returns the claim value.
func (c ClaimSet) Get(name string) (any, bool) {
	v, ok := c.m[name]
	return v, ok
}

// Int returns an integral claim.
func (c ClaimSet) Int(name string) (int64, bool) {
	v, ok := c.m[name].(int64)
	return v, ok
}

// String returns a string claim.
func (c ClaimSet) String(name string) (string, bool) {
	v, ok := c.m[name].(string)
	return v, ok
}

// Map returns a copy of the underlying claims.
func (c ClaimSet) Map() map[string]any {
	return maps.Clone(c.m)
}

// With returns a copy of c with the extra claims set, replacing existing
// values of the same name.
func (c ClaimSet) With(extra map[string]any) (ClaimSet, error) {
	merged := maps.Clone(c.m)
	if merged == nil {
		merged = make(map[string]any, len(extra))
	}
	maps.Copy(merged, extra)
	return NewClaimSet(merged)
}

func (c ClaimSet) IssuedAt() int64  { v, _ := c.Int(ClaimIssuedAt); return v }
func (c ClaimSet) ExpiresAt() int64 { v, _ := c.Int(ClaimExpiresAt); return v }

// Subject returns the subject of a refresh token. anonymous is true when the
// claim is present but null.
func (c ClaimSet) Subject() (sub string, anonymous bool) {
	v, ok := c.m[ClaimSubject]
	if !ok || v == nil {
		return "", ok
	}
	s, _ := v.(string)
	return s, false
}

// Authz returns the authorization bitmask of an access token.
func (c ClaimSet) Authz() (int, bool) {
	v, ok := c.Int(ClaimAuthz)
	return int(v), ok
}

func (c ClaimSet) missing(required []string) error {
	for _, name := range required {
		if !c.Has(name) {
			return fmt.Errorf("%w: %s", ErrIntegrity, name)
		}
	}
	return nil
}

func normalize(claims map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("jwtx: claims not serialisable: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("jwtx: claims not serialisable: %w", err)
	}
	for k, v := range out {
		out[k] = fromJSON(v)
	}
	return out, nil
}

func fromJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f)
		}
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSON(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromJSON(e)
		}
		return t
	default:
		return v
	}
}
