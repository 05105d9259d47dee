package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xhad/sitekb/internal/models"
)

// ApologyReply is returned to clients when a chat request fails. Upstream
// error details are logged, never sent.
const ApologyReply = "Sorry, the site guide ran into a server error. Try again in a bit."

const maxBodyBytes = 1 << 20

// Answerer produces a reply for a chat request.
type Answerer interface {
	Answer(ctx context.Context, req models.ChatRequest) (string, error)
}

type Config struct {
	Addr string
	Name string // shown by the root status route
}

// Server exposes the retriever over HTTP and WebSocket.
type Server struct {
	config   Config
	answerer Answerer
	logger   *slog.Logger
	http     *http.Server
}

func New(answerer Answerer, config Config, logger *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":3000"
	}
	if config.Name == "" {
		config.Name = "sitekb"
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		answerer: answerer,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return withCORS(mux)
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.config.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s API is running.", s.config.Name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// An empty body is an empty message, not a malformed one.
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	start := time.Now()
	reply, err := s.answerer.Answer(r.Context(), req)
	if err != nil {
		s.logger.Error("chat request failed", "error", err, "elapsed", time.Since(start))
		writeJSON(w, http.StatusInternalServerError, models.ChatResponse{Reply: ApologyReply})
		return
	}

	s.logger.Debug("chat request answered", "history", len(req.History), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
