package jwtx

// AccessBuilder mints access tokens carrying an authorization bitmask.
type AccessBuilder struct {
	*Codec
}

func NewAccessBuilder(cfg Config) (*AccessBuilder, error) {
	c, err := NewCodec(KindAccess, cfg)
	if err != nil {
		return nil, err
	}
	return &AccessBuilder{Codec: c}, nil
}

// Create returns a fresh access claim set for authz.
func (b *AccessBuilder) Create(authz int) (ClaimSet, error) {
	return b.Codec.Create(map[string]any{ClaimAuthz: authz})
}

// RefreshBuilder mints refresh tokens carrying a subject.
type RefreshBuilder struct {
	*Codec
}

func NewRefreshBuilder(cfg Config) (*RefreshBuilder, error) {
	c, err := NewCodec(KindRefresh, cfg)
	if err != nil {
		return nil, err
	}
	return &RefreshBuilder{Codec: c}, nil
}

// Create returns a fresh refresh claim set for sub.
func (b *RefreshBuilder) Create(sub string) (ClaimSet, error) {
	return b.Codec.Create(map[string]any{ClaimSubject: sub})
}

// CreateAnonymous returns a refresh claim set whose subject is null.
func (b *RefreshBuilder) CreateAnonymous() (ClaimSet, error) {
	return b.Codec.Create(map[string]any{ClaimSubject: nil})
}
