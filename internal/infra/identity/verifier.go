package identity

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"
)

// Claims are the identity provider claims the portal relies on.
type Claims struct {
	Email               string `json:"email,omitempty"`
	TokenUse            string `json:"token_use,omitempty"`
	ClientID            string `json:"client_id,omitempty"`
	OnboardingCompleted bool   `json:"custom:onboarding_completed,omitempty"`
	jwt.RegisteredClaims
}

// VerifierConfig configures token verification.
type VerifierConfig struct {
	// JWKSURL enables RS256 verification against the provider's key set.
	JWKSURL string
	// Issuer, when set, must match the iss claim.
	Issuer string
	// ClientID, when set, must match aud (id tokens) or client_id (access tokens).
	ClientID string
	// Secret enables HS256 tokens. Development only.
	Secret []byte
}

// Verifier validates bearer tokens and turns them into sessions.
type Verifier struct {
	cfg    VerifierConfig
	keys   *jwk.Cache
	logger *zap.Logger
}

// NewVerifier creates a verifier. When a JWKS URL is configured the key set is
// registered in an auto-refreshing cache bound to ctx.
func NewVerifier(ctx context.Context, cfg VerifierConfig, logger *zap.Logger) (*Verifier, error) {
	v := &Verifier{cfg: cfg, logger: logger}
	if cfg.JWKSURL == "" {
		if len(cfg.Secret) == 0 {
			return nil, fmt.Errorf("identity: neither JWKS URL nor secret configured")
		}
		return v, nil
	}

	v.keys = jwk.NewCache(ctx)
	if err := v.keys.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks: %w", err)
	}
	return v, nil
}

// Verify parses and validates a raw bearer token.
func (v *Verifier) Verify(ctx context.Context, raw string) (*domain.Session, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return nil, &domain.ErrUnauthorized{Message: "missing bearer token"}
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired(), jwt.WithLeeway(10 * time.Second)}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.key(ctx, t)
	}, opts...)
	if err != nil {
		v.logger.Debug("token rejected", zap.Error(err))
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if !v.audienceOK(claims) {
		return nil, &domain.ErrUnauthorized{Message: "token issued for another client"}
	}

	return &domain.Session{
		UserID:              claims.Subject,
		Email:               claims.Email,
		Token:               raw,
		OnboardingCompleted: claims.OnboardingCompleted,
	}, nil
}

func (v *Verifier) key(ctx context.Context, t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.cfg.Secret) == 0 {
			return nil, fmt.Errorf("hmac tokens not accepted")
		}
		return v.cfg.Secret, nil
	case *jwt.SigningMethodRSA:
		if v.keys == nil {
			return nil, fmt.Errorf("no key set configured")
		}
		kid, _ := t.Header["kid"].(string)
		set, err := v.keys.Get(ctx, v.cfg.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		k, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		var pub rsa.PublicKey
		if err := k.Raw(&pub); err != nil {
			return nil, fmt.Errorf("decode key %q: %w", kid, err)
		}
		return &pub, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
}

func (v *Verifier) audienceOK(c *Claims) bool {
	if v.cfg.ClientID == "" {
		return true
	}
	if c.TokenUse == "access" {
		return c.ClientID == v.cfg.ClientID
	}
	for _, aud := range c.Audience {
		if aud == v.cfg.ClientID {
			return true
		}
	}
	return false
}

// SignDevToken issues an HS256 token for local development and tests.
func SignDevToken(secret []byte, userID, email string, onboarded bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:               email,
		TokenUse:            "id",
		OnboardingCompleted: onboarded,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
