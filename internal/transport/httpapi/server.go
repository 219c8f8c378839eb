// Package httpapi exposes the chat coordinator and a few owner-scoped reads over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/observability"
	"github.com/sandevgo/carebot/pkg/log"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	maxBodyBytes        = 64 << 10
)

type Server struct {
	cfg     *config.HTTPConfig
	chat    core.ChatHandler
	store   core.StructuredStore
	metrics *observability.Metrics
	srv     *http.Server
}

func New(cfg *config.HTTPConfig, chat core.ChatHandler, store core.StructuredStore, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		chat:    chat,
		store:   store,
		metrics: metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Post("/chat", s.handleChat)
	r.Route("/v1/owners/{owner}", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Get("/routine", s.handleRoutine)
		r.Delete("/flag", s.handleClearFlag)
	})

	return r
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.metrics == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": core.Version,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req core.Request
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	reply, err := s.chat.Handle(r.Context(), req)
	if err != nil {
		// The coordinator already logged the cause; the caller only gets a kind reply.
		respondJSON(w, http.StatusServiceUnavailable, chatResponse{
			Response: core.ReplyUnavailable,
			Code:     "unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		OwnerID:  reply.OwnerID,
		Intent:   reply.Intent.String(),
		Response: reply.Text,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(chi.URLParam(r, "owner"))

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.store.GetRecentHistory(r.Context(), owner, limit)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("owner", owner).Msg("failed to load history")
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "history is unavailable")
		return
	}
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"user_id": owner, "history": entries})
}

func (s *Server) handleRoutine(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(chi.URLParam(r, "owner"))

	entries, err := s.store.GetRoutine(r.Context(), owner)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("owner", owner).Msg("failed to load routine")
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "routine is unavailable")
		return
	}
	if entries == nil {
		entries = []core.RoutineEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"user_id": owner, "routine": entries})
}

func (s *Server) handleClearFlag(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(chi.URLParam(r, "owner"))

	if err := s.store.ClearFlaggedIssue(r.Context(), owner); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("owner", owner).Msg("failed to clear flag")
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "flag could not be cleared")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatResponse struct {
	OwnerID  string `json:"user_id,omitempty"`
	Intent   string `json:"intent,omitempty"`
	Response string `json:"response"`
	Code     string `json:"code,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
