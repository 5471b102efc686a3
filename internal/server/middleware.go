package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/auth"
	"tailscale.com/client/tailscale/apitype"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

// UserInfo is the identity shown by /api/v1/me.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

var devUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// DevIdentity attributes every request to user 1. Only for local development.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), 1, devUser)))
	})
}

// BearerIdentity validates the Authorization header and resolves the token's
// login to an owner id.
func BearerIdentity(cfg auth.Config, users *UserCache, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			id, err := auth.Parse(token, cfg)
			if err != nil {
				log.Info("rejected bearer token", "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": auth.ErrInvalidToken.Error()})
				return
			}
			resolveAndServe(w, r, next, users, log, UserInfo{Login: id.Login, DisplayName: id.DisplayName})
		})
	}
}

// WhoIser looks up the tailnet identity behind a remote address. tsnet's
// local client satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// TailscaleIdentity identifies callers by their tailnet login.
func TailscaleIdentity(lc WhoIser, users *UserCache, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := lc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil || who.UserProfile.LoginName == "" {
				log.Info("tailscale whois failed", "remote", remoteHost(r.RemoteAddr), "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet identity"})
				return
			}
			info := UserInfo{Login: who.UserProfile.LoginName, DisplayName: who.UserProfile.DisplayName}
			resolveAndServe(w, r, next, users, log, info)
		})
	}
}

func resolveAndServe(w http.ResponseWriter, r *http.Request, next http.Handler, users *UserCache, log *slog.Logger, info UserInfo) {
	uid, err := users.Resolve(r.Context(), info.Login, info.DisplayName)
	if err != nil {
		log.Error("resolving user", "login", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), uid, info)))
}

func withIdentity(ctx context.Context, uid int, info UserInfo) context.Context {
	ctx = context.WithValue(ctx, userIDKey, uid)
	return context.WithValue(ctx, userInfoKey, info)
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// userIDFromContext returns the owner id set by the identity middleware, or 1.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// mustUserID is userIDFromContext for handlers that must never fall back.
func mustUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := r.Context().Value(userIDKey).(int)
	if !ok || id <= 0 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return 0, false
	}
	return id, true
}

func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return devUser
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

// CORS adds permissive CORS headers for the mobile client and local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
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

