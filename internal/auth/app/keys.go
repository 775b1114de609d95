package app

import (
	"fmt"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// InitIssuer builds the HS256 issuer from the configured shared secret. The
// key is read once here and never changes for the life of the process;
// replacing it invalidates every outstanding access token.
func InitIssuer(cfg Config) (*jwtx.Issuer, error) {
	issuer, err := jwtx.NewIssuer(jwtx.IssuerOptions{
		Key:       []byte(cfg.SigningKey),
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
		AccessTTL: cfg.accessTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	return issuer, nil
}
