package service

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
)

// SelfCheck proves the configuration works before traffic is accepted. A
// failure here is a configuration defect and fatal at startup.
type SelfCheck struct {
	Access   *jwtx.AccessBuilder
	Refresh  *jwtx.RefreshBuilder
	Gateway  Gateway
	Callback string
}

// Tokens creates and decodes a throwaway token with each builder.
func (c *SelfCheck) Tokens() error {
	if err := c.Access.SelfTest(); err != nil {
		return fmt.Errorf("access token self-check: %w", err)
	}
	if err := c.Refresh.SelfTest(); err != nil {
		return fmt.Errorf("refresh token self-check: %w", err)
	}
	return nil
}

// Run checks the token builders and then requests a passive authn redirect
// from the IdP.
func (c *SelfCheck) Run(ctx context.Context) error {
	if err := c.Tokens(); err != nil {
		return err
	}
	if c.Gateway == nil {
		return nil
	}
	if _, err := c.Gateway.AuthnRedirect(ctx, true, c.Callback); err != nil {
		return fmt.Errorf("gateway self-check: %w", err)
	}
	return nil
}
