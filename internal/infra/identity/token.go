// Package identity supplies bearer tokens to the API client and verifies the
// tokens portal callers present.
package identity

import "context"

// TokenSource returns the bearer token for an outbound call.
// An empty token means the call goes out unauthenticated.
type TokenSource func(ctx context.Context) (string, error)

type tokenKey struct{}

// WithToken attaches a caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// FromContext returns the token stored by WithToken, if any.
func FromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// ContextTokenSource forwards whatever token the request context carries.
// The portal uses it so each backend call acts as the signed-in user.
func ContextTokenSource() TokenSource {
	return func(ctx context.Context) (string, error) {
		token, _ := FromContext(ctx)
		return token, nil
	}
}

// StaticTokenSource always returns token.
func StaticTokenSource(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}
