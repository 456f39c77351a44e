// Package http exposes a running simulation over HTTP: the latest scene as
// JSON, server-sent event and websocket streams of scenes, pointer and fire
// input, health, build info and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/flock"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SceneReader returns the latest published scene.
type SceneReader interface {
	Latest(ctx context.Context) (domain.Scene, error)
}

// Controller forwards player input to the simulation.
type Controller interface {
	Move(x float64) error
	Fire() error
}

// Server serves the simulation endpoints.
type Server struct {
	Scenes     SceneReader
	Streams    *StreamManager
	Controller Controller
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStreams enables GET /events and GET /ws backed by sm.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithController enables the POST /input endpoints.
func WithController(c Controller) Option {
	return func(s *Server) {
		s.Controller = c
	}
}

// WithGatherer serves GET /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the simulation.
func NewHandler(scenes SceneReader, opts ...Option) http.Handler {
	server := &Server{
		Scenes: scenes,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/scene", server.GetScene)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
		r.Get("/ws", server.ServeWS)
	}
	if server.Controller != nil {
		r.Post("/input/move", server.Move)
		r.Post("/input/fire", server.Fire)
	}
	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetScene handles the GET /scene request.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	scene, err := s.Scenes.Latest(r.Context())
	if errors.Is(err, domain.ErrNoScene) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Error("GetScene failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.Logger, scene)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{
		"app":     "flock-http",
		"version": strings.TrimSpace(flock.Version),
	})
}

type moveRequest struct {
	X *float64 `json:"x"`
}

// Move handles the POST /input/move request.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil {
		http.Error(w, "Invalid request body: want {\"x\": number}", http.StatusBadRequest)
		return
	}
	s.control(w, s.Controller.Move(*req.X))
}

// Fire handles the POST /input/fire request.
func (s *Server) Fire(w http.ResponseWriter, r *http.Request) {
	s.control(w, s.Controller.Fire())
}

func (s *Server) control(w http.ResponseWriter, err error) {
	if err != nil {
		s.Logger.Warn("input rejected", "err", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SubscribeEvents handles the GET /events request (SSE). Each event carries
// one scene as JSON.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager fans scenes out to active SSE connections. It implements
// ports.SceneSink.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a manager with no subscribers.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel and returns it with its cancel func.
func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Len returns the number of connected subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber, dropping it for slow clients.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping scene")
		}
	}
}

// Publish implements ports.SceneSink.
func (sm *StreamManager) Publish(ctx context.Context, scene domain.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	sm.Broadcast(string(data))
	return nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
