// Package httpapi serves the read-only operations endpoints: health,
// stale sessions, shared pools and per-owner ledger audits.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/model"
	"casino-bot/internal/repository"
	"casino-bot/internal/service"
)

// Ops is the read side the endpoints are served from.
type Ops interface {
	Ping(ctx context.Context) error
	StaleSessions(ctx context.Context, olderThan time.Duration, limit int) ([]service.StaleSession, error)
	Pools(ctx context.Context) ([]*model.Pool, error)
	Audit(ctx context.Context, ownerID int64, limit int) (*service.Audit, error)
}

// DefaultStaleAge is used when older_than is omitted.
const DefaultStaleAge = time.Hour

// NewRouter builds the operations router. Everything under /api requires
// adminKey when it is set; request logs are written to logOut as JSON.
func NewRouter(ops Ops, adminKey string, logOut io.Writer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/healthz", healthHandler(ops))

	r.Route("/api", func(r chi.Router) {
		r.Use(requestLogger(logOut))
		r.Use(adminAuth(adminKey))
		r.Get("/sessions/stale", staleHandler(ops))
		r.Get("/pools", poolsHandler(ops))
		r.Get("/ledger/{owner_id}", auditHandler(ops))
	})
	return r
}

func requestLogger(out io.Writer) func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				route := req.URL.Path
				if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("route", route),
				}
			},
		},
	)
}

func adminAuth(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !checkAdminKey(r, adminKey) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAdminKey(r *http.Request, adminKey string) bool {
	if r.Header.Get("X-Admin-Key") == adminKey {
		return true
	}
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	return len(auth) > len(prefix) && auth[:len(prefix)] == prefix && auth[len(prefix):] == adminKey
}

func healthHandler(ops Ops) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ops.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func staleHandler(ops Ops) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		age := DefaultStaleAge
		if v := r.URL.Query().Get("older_than"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				writeError(w, http.StatusBadRequest, "invalid older_than")
				return
			}
			age = d
		}
		sessions, err := ops.StaleSessions(r.Context(), age, parseLimit(r))
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": sessions, "older_than": age.String()})
	}
}

func poolsHandler(ops Ops) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pools, err := ops.Pools(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": pools})
	}
}

func auditHandler(ops Ops) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := strconv.ParseInt(chi.URLParam(r, "owner_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid owner_id")
			return
		}
		audit, err := ops.Audit(r.Context(), ownerID, parseLimit(r))
		if errors.Is(err, repository.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, audit)
	}
}

// parseLimit reads ?limit=, clamped to [1, 500] with a default of 50.
func parseLimit(r *http.Request) int {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return min(max(limit, 1), 500)
}

func internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Ops request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
