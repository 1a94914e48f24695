// Package admin serves the operator status page and JSON API.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/metrics"
	"radar-fusion-sim/internal/network"
	"radar-fusion-sim/internal/scenario"
	"radar-fusion-sim/internal/sim"
)

type Server struct {
	Sim      *sim.Simulator
	tpl      *template.Template
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds the admin routes for s. A nil gatherer disables /metrics.
func NewServer(s *sim.Simulator, g prometheus.Gatherer) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, tpl: tpl, gatherer: g, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/contacts", s.handleContacts)
	s.mux.HandleFunc("/fused", s.handleFused)
	s.mux.HandleFunc("/nodes", s.handleNodes)
	s.mux.HandleFunc("/nodes/status", s.handleNodeStatus)
	s.mux.HandleFunc("/network-stats", s.handleNetworkStats)
	s.mux.HandleFunc("/fusion-stats", s.handleFusionStats)
	s.mux.HandleFunc("/conflicts", s.handleConflicts)
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/scenario", s.handleScenario)
	s.mux.HandleFunc("/radar-mode", s.handleRadarMode)
	if s.gatherer != nil {
		s.mux.Handle("/metrics", metrics.Handler(s.gatherer))
	}
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	log.Info("admin server listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return false
	}
	return true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.Sim.Snapshot()
	data := struct {
		SiteID    string
		Snap      *sim.Snapshot
		Scenarios []string
		Modes     []contact.RadarMode
	}{
		SiteID:    s.Sim.Config().SiteID,
		Snap:      snap,
		Scenarios: s.Sim.Scenarios(),
		Modes:     []contact.RadarMode{contact.ModeSurveillance, contact.ModeTracking, contact.ModeEngagement},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

// handleContacts lists ground-truth contacts, optionally filtered by ?iff=.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts := s.Sim.Snapshot().Contacts
	if iff := r.URL.Query().Get("iff"); iff != "" {
		filtered := []*contact.Contact{}
		for _, c := range contacts {
			if string(c.IFF) == iff {
				filtered = append(filtered, c)
			}
		}
		contacts = filtered
	}
	writeJSON(w, contacts)
}

func (s *Server) handleFused(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Fused)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Nodes)
}

func (s *Server) handleNetworkStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Network)
}

func (s *Server) handleFusionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Fusion)
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Conflicts())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Events)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, s.Sim.Scenarios())
		return
	}
	if !requirePost(w, r) {
		return
	}
	name := r.FormValue("name")
	n, err := s.Sim.GenerateScenario(r.Context(), name)
	if errors.Is(err, scenario.ErrUnknownScenario) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]any{"scenario": name, "contacts": n})
}

func (s *Server) handleNodeStatus(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	st, err := network.ParseStatus(r.FormValue("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tr, err := s.Sim.SetNodeStatus(r.Context(), r.FormValue("id"), st)
	switch {
	case errors.Is(err, network.ErrUnknownNode):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, network.ErrMasterPinned):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, tr)
}

func (s *Server) handleRadarMode(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, map[string]contact.RadarMode{"mode": s.Sim.Snapshot().RadarMode})
		return
	}
	if !requirePost(w, r) {
		return
	}
	mode, err := contact.ParseRadarMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Sim.SetRadarMode(mode)
	writeJSON(w, map[string]contact.RadarMode{"mode": mode})
}
