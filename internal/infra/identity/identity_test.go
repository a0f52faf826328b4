package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func TestContextTokenSource(t *testing.T) {
	src := identity.ContextTokenSource()

	token, err := src(context.Background())
	if err != nil || token != "" {
		t.Fatalf("expected empty token, got %q (%v)", token, err)
	}

	token, _ = src(identity.WithToken(context.Background(), "abc"))
	if token != "abc" {
		t.Errorf("expected abc, got %q", token)
	}
}

func TestStaticTokenSource(t *testing.T) {
	src := identity.StaticTokenSource("cli-token")

	token, err := src(identity.WithToken(context.Background(), "ignored"))
	if err != nil || token != "cli-token" {
		t.Errorf("expected cli-token, got %q (%v)", token, err)
	}
}

func TestVerifier_DevToken(t *testing.T) {
	v, err := identity.NewVerifier(context.Background(), identity.VerifierConfig{Secret: secret}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := identity.SignDevToken(secret, "user-1", "a@b.co", true, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	sess, err := v.Verify(context.Background(), "Bearer "+raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID != "user-1" || sess.Email != "a@b.co" || !sess.OnboardingCompleted {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.Token != raw {
		t.Error("expected raw token to be kept on the session")
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v, _ := identity.NewVerifier(context.Background(), identity.VerifierConfig{Secret: secret}, zap.NewNop())

	expired, _ := identity.SignDevToken(secret, "user-1", "", false, -time.Hour)
	wrongKey, _ := identity.SignDevToken([]byte("other"), "user-1", "", false, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expired},
		{"wrong key", wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			var unauth *domain.ErrUnauthorized
			if !errors.As(err, &unauth) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestNewVerifier_RequiresKeyMaterial(t *testing.T) {
	if _, err := identity.NewVerifier(context.Background(), identity.VerifierConfig{}, zap.NewNop()); err == nil {
		t.Error("expected error without JWKS URL or secret")
	}
}

func TestVerifier_JWKS(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := jwk.FromRaw(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	_ = pub.Set(jwk.KeyIDKey, "k1")
	set := jwk.NewSet()
	_ = set.AddKey(pub)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := identity.NewVerifier(ctx, identity.VerifierConfig{
		JWKSURL:  srv.URL,
		Issuer:   "https://issuer.test",
		ClientID: "portal",
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	sign := func(aud string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, identity.Claims{
			Email:    "rs@b.co",
			TokenUse: "id",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-rs",
				Issuer:    "https://issuer.test",
				Audience:  jwt.ClaimStrings{aud},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tok.Header["kid"] = "k1"
		raw, err := tok.SignedString(priv)
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	sess, err := v.Verify(ctx, sign("portal"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID != "user-rs" {
		t.Errorf("expected user-rs, got %q", sess.UserID)
	}

	if _, err := v.Verify(ctx, sign("someone-else")); err == nil {
		t.Error("expected audience mismatch to be rejected")
	}

	hs, _ := identity.SignDevToken(secret, "user-1", "", false, time.Hour)
	if _, err := v.Verify(ctx, hs); err == nil {
		t.Error("expected HS256 token to be rejected without a secret")
	}
}
