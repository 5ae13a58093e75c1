package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Backdate is subtracted from "now" when setting iat so a verifier with a
// slightly slower clock still accepts a freshly minted token.
const Backdate = 60 * time.Second

// DefaultAlgorithm is used when Config.Algorithm is empty.
const DefaultAlgorithm = "HS256"

var (
	ErrDecode               = errors.New("jwtx: malformed token or bad signature")
	ErrExpired              = errors.New("jwtx: signature has expired")
	ErrIntegrity            = errors.New("jwtx: required claim missing")
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")
	ErrInvalidConfig        = errors.New("jwtx: invalid codec config")
)

// Kind separates access from refresh tokens. Each kind has its own
// required claims and must be given its own Config.
type Kind int

const (
	KindAccess Kind = iota + 1
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Required lists the claims a token of this kind must carry.
func (k Kind) Required() []string {
	switch k {
	case KindAccess:
		return []string{ClaimIssuedAt, ClaimExpiresAt, ClaimAuthz}
	case KindRefresh:
		return []string{ClaimIssuedAt, ClaimExpiresAt, ClaimSubject}
	default:
		return []string{ClaimIssuedAt, ClaimExpiresAt}
	}
}

// Config is the signing configuration for one token kind.
type Config struct {
	Secret    []byte
	Lifetime  time.Duration // truncated to whole seconds
	Algorithm string        // HS256, HS384 or HS512
}

// Codec creates, signs and verifies claim sets of a single kind.
type Codec struct {
	kind     Kind
	secret   []byte
	lifetime int64
	method   *jwt.SigningMethodHMAC
	now      func() time.Time
}

// NewCodec validates cfg and returns a codec for kind. An algorithm the HMAC
// backend does not implement fails here with ErrUnsupportedAlgorithm so a
// misconfiguration never reaches request time.
func NewCodec(kind Kind, cfg Config) (*Codec, error) {
	if kind != KindAccess && kind != KindRefresh {
		return nil, fmt.Errorf("%w: unknown token kind %s", ErrInvalidConfig, kind)
	}
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: %s secret is empty", ErrInvalidConfig, kind)
	}
	lifetime := int64(cfg.Lifetime / time.Second)
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: %s lifetime must be at least 1s", ErrInvalidConfig, kind)
	}

	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	return &Codec{
		kind:     kind,
		secret:   append([]byte(nil), cfg.Secret...),
		lifetime: lifetime,
		method:   method,
		now:      time.Now,
	}, nil
}

func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}
	m, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	return m, nil
}

// WithClock returns a copy of the codec reading time from now. Tests use it to
// mint tokens in the past.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) Kind() Kind              { return c.kind }
func (c *Codec) Algorithm() string       { return c.method.Alg() }
func (c *Codec) Lifetime() time.Duration { return time.Duration(c.lifetime) * time.Second }

// Create returns a claim set with iat and exp set from the current time and
// extra merged on top. Extra claims win over the computed ones.
func (c *Codec) Create(extra map[string]any) (ClaimSet, error) {
	now := c.now().Unix()
	base := ClaimSet{m: map[string]any{
		ClaimIssuedAt:  now - int64(Backdate/time.Second),
		ClaimExpiresAt: now + c.lifetime,
	}}

	cs, err := base.With(extra)
	if err != nil {
		return ClaimSet{}, err
	}
	if err := cs.missing(c.kind.Required()); err != nil {
		return ClaimSet{}, err
	}
	return cs, nil
}

// Encode signs cs into a compact JWS.
func (c *Codec) Encode(cs ClaimSet) (string, error) {
	if err := cs.missing(c.kind.Required()); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(c.method, jwt.MapClaims(cs.Map()))
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", c.kind, err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
// There is no leeway on exp: the backdated iat is the only skew allowance.
func (c *Codec) Decode(token string) (ClaimSet, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}); err != nil {
		return ClaimSet{}, mapParseError(err)
	}

	m := make(map[string]any, len(claims))
	for k, v := range claims {
		m[k] = fromJSON(v)
	}
	cs := ClaimSet{m: m}

	if err := cs.missing(c.kind.Required()); err != nil {
		return ClaimSet{}, err
	}
	return cs, nil
}

// SelfTest creates, encodes and decodes a throwaway token.
func (c *Codec) SelfTest() error {
	var extra map[string]any
	switch c.kind {
	case KindAccess:
		extra = map[string]any{ClaimAuthz: 0}
	case KindRefresh:
		extra = map[string]any{ClaimSubject: nil}
	}

	cs, err := c.Create(extra)
	if err != nil {
		return err
	}
	token, err := c.Encode(cs)
	if err != nil {
		return err
	}
	_, err = c.Decode(token)
	return err
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrDecode, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	default:
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
}
