package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/identity"
	"github.com/quarkfin/platform-go/internal/port"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// bearerToken extracts the caller's token. Browsers cannot set headers on a
// WebSocket handshake, so upgrades may pass it as ?access_token= instead.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if websocket.IsWebSocketUpgrade(r) {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
	}
	return "", false
}

// SessionMiddleware verifies the bearer token, stores the session in the
// request context and forwards the token to backend calls.
func SessionMiddleware(verifier port.SessionVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				writeError(w, http.StatusServiceUnavailable, "session verification unavailable")
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("auth: missing or malformed token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				handleServiceError(w, &domain.ErrUnauthorized{Message: "missing bearer token"}, logger)
				return
			}

			session, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// OptionalSession attaches a session when a valid token is present and treats
// every other request as signed out.
func OptionalSession(verifier port.SessionVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			session, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("auth: ignoring invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

func withSession(ctx context.Context, s *domain.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return identity.WithToken(ctx, s.Token)
}

// SessionFromContext returns the verified session, or nil when signed out.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}
