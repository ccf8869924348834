package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Identity is the request-scoped caller, resolved exactly once per inbound
// request. Handlers read it from the context; nothing else carries auth
// state.
type Identity struct {
	UserID      int    `json:"user_id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type contextKey int

const identityKey contextKey = iota

// devIdentity is used when no Tailscale listener is active, so local
// development needs no auth setup.
var devIdentity = Identity{UserID: 1, Login: "local", DisplayName: "Local Dev User"}

// identityFromContext returns the Identity stored by ResolveIdentity,
// falling back to the dev identity.
func identityFromContext(r *http.Request) Identity {
	if id, ok := r.Context().Value(identityKey).(Identity); ok {
		return id
	}
	return devIdentity
}

// ResolveIdentity populates the request context with the caller's Identity.
// With a Tailscale listener the caller is resolved via whois and mapped to
// a user row; otherwise every request runs as the dev identity.
func (s *Server) ResolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := devIdentity

		if s.ts != nil {
			who, err := s.ts.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil {
				s.log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				http.Error(w, `{"error":"identity resolution failed"}`, http.StatusUnauthorized)
				return
			}
			login := who.UserProfile.LoginName
			displayName := who.UserProfile.DisplayName

			uid, err := s.db.GetOrCreateUser(r.Context(), login, displayName)
			if err != nil {
				s.log.Error("user lookup failed", "login", login, "error", err)
				http.Error(w, `{"error":"user lookup failed"}`, http.StatusInternalServerError)
				return
			}
			id = Identity{UserID: uid, Login: login, DisplayName: displayName}
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
				return
			}
			if key != apiKey {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
