// Command graphview-server serves force-directed layouts over HTTP: load
// a graph, let the server settle it, and fetch positioned JSON or SVG.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
	"github.com/dd0wney/cluso-graphview/pkg/layout"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/metrics"
	"github.com/dd0wney/cluso-graphview/pkg/viz"
)

type Server struct {
	// mu serializes handler access to state and controller: handlers
	// run on per-request goroutines, while graph.State and the layout
	// working set are single-goroutine structures.
	mu         sync.Mutex
	state      *graph.State
	controller *layout.Controller
	logger     logging.Logger
	registry   *metrics.Registry
	startTime  time.Time
}

func newServer(cfg *config.LayoutConfig, logger logging.Logger) *Server {
	registry := metrics.NewRegistry()
	return &Server{
		state: graph.NewState(),
		controller: layout.NewController(cfg,
			layout.WithLogger(logger),
			layout.WithMetrics(registry),
		),
		logger:    logger,
		registry:  registry,
		startTime: time.Now(),
	}
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	// Graph endpoints
	router.HandleFunc("/graph", s.loadGraph).Methods("POST")
	router.HandleFunc("/graph", s.getGraph).Methods("GET")
	router.HandleFunc("/graph/svg", s.getSVG).Methods("GET")

	// Layout endpoints
	router.HandleFunc("/layout/precompute", s.precompute).Methods("POST")
	router.HandleFunc("/layout/restart", s.restart).Methods("POST")
	router.HandleFunc("/layout/stop", s.stop).Methods("POST")
	router.HandleFunc("/layout/status", s.status).Methods("GET")

	// Admin endpoints
	router.HandleFunc("/health", s.health).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(
		s.registry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	)).Methods("GET")

	router.Use(corsMiddleware)
	router.Use(s.loggingMiddleware)
	return router
}

func main() {
	port := flag.Int("port", 8080, "Server port")
	configPath := flag.String("config", "", "Layout config file (YAML)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	instance := uuid.NewString()
	logger := logging.NewDefaultLogger().With(
		logging.Component("graphview-server"),
		logging.Instance(instance),
	)

	server := newServer(cfg, logger)
	defer server.controller.Close()

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("server listening", logging.String("addr", addr))

	if err := http.ListenAndServe(addr, server.router()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// Middleware

func corsMiddleware(next http.Handler) http.Handler {
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

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			logging.String("method", r.Method),
			logging.String("path", r.RequestURI),
			logging.Latency(time.Since(start)))
	})
}

// Graph handlers

type graphRequest struct {
	Nodes []struct {
		ID         uint64            `json:"id"`
		Labels     []string          `json:"labels"`
		Properties map[string]string `json:"properties"`
	} `json:"nodes"`
	Relationships []struct {
		ID   uint64 `json:"id"`
		From uint64 `json:"from"`
		To   uint64 `json:"to"`
		Type string `json:"type"`
	} `json:"relationships"`
}

// loadGraph replaces the graph, seeds the layout and precomputes a first
// settled arrangement so GET /graph is immediately useful.
func (s *Server) loadGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make([]*graph.Node, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		nodes = append(nodes, &graph.Node{ID: n.ID, Labels: n.Labels, Properties: n.Properties})
	}
	s.state.ReplaceNodes(nodes)

	rels := make([]*graph.Relationship, 0, len(req.Relationships))
	for _, rel := range req.Relationships {
		rels = append(rels, &graph.Relationship{
			ID:         rel.ID,
			FromNodeID: rel.From,
			ToNodeID:   rel.To,
			Type:       rel.Type,
		})
	}
	s.state.ReplaceRelationships(rels)

	s.controller.UpdateNodes(s.state)
	s.controller.UpdateRelationships(s.state)
	s.controller.Precompute()

	s.logger.Info("graph loaded",
		logging.NodeCount(s.state.NodeCount()),
		logging.LinkCount(s.state.RelationshipCount()))

	w.WriteHeader(http.StatusCreated)
	respondJSON(w, map[string]any{
		"nodes":         s.state.NodeCount(),
		"relationships": s.state.RelationshipCount(),
		"phase":         s.controller.Phase().String(),
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := viz.Capture(s.controller, s.state)
	s.mu.Unlock()

	data, err := snap.ExportJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := viz.Capture(s.controller, s.state)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(snap.ExportSVG(viz.DefaultSVGConfig()))
}

// Layout handlers

func (s *Server) precompute(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.NodeCount() == 0 {
		http.Error(w, "no graph loaded", http.StatusConflict)
		return
	}
	s.controller.Precompute()
	respondJSON(w, map[string]any{
		"phase": s.controller.Phase().String(),
		"alpha": s.controller.Simulation().Alpha(),
	})
}

func (s *Server) restart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.NodeCount() == 0 {
		http.Error(w, "no graph loaded", http.StatusConflict)
		return
	}
	s.controller.Restart()
	respondJSON(w, map[string]any{
		"phase": s.controller.Phase().String(),
	})
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Stop()
	respondJSON(w, map[string]any{
		"phase": s.controller.Phase().String(),
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sim := s.controller.Simulation()
	respondJSON(w, map[string]any{
		"phase":         s.controller.Phase().String(),
		"alpha":         sim.Alpha(),
		"running":       sim.Running(),
		"ended":         sim.Ended(),
		"nodes":         s.state.NodeCount(),
		"relationships": s.state.RelationshipCount(),
	})
}

// Admin handlers

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status": "healthy",
		"uptime": time.Since(s.startTime).String(),
	})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
