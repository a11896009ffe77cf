// Package solvertest runs an in-memory solver service for tests.
package solvertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Server is a fake solver. Every solve returns one square polygon per layer.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	unavailable bool
	failAt      string
	solves      []string
	checkOuts   int
	checkIns    int
}

func NewServer() *Server {
	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /extensions/{name}", s.status)
	mux.HandleFunc("POST /extensions/{name}/checkout", s.checkout)
	mux.HandleFunc("POST /extensions/{name}/checkin", s.checkin)
	mux.HandleFunc("POST /layers/{layer}/solve", s.solve)
	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "Available"
	if s.unavailable {
		status = "Unavailable"
	}
	writeJSON(w, map[string]string{"status": status})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkOuts++
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) checkin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIns++
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeOfDay string `json:"timeOfDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.solves = append(s.solves, req.TimeOfDay)
	fail := s.failAt != "" && s.failAt == req.TimeOfDay
	s.mu.Unlock()

	if fail {
		http.Error(w, "no facilities could be located", http.StatusUnprocessableEntity)
		return
	}

	layer := r.PathValue("layer")
	f := geojson.NewFeature(orb.Polygon{orb.Ring{
		{-122.3, 47.6}, {-122.3, 47.7}, {-122.2, 47.7}, {-122.2, 47.6}, {-122.3, 47.6},
	}})
	f.Properties["Name"] = strings.TrimSpace(layer) + " : 0 - 15"
	f.Properties["FromBreak"] = 0.0
	f.Properties["ToBreak"] = 15.0

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	writeJSON(w, fc)
}

// SetUnavailable makes the extension status report Unavailable.
func (s *Server) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

// FailAt makes the solve for this time of day fail with a 422.
func (s *Server) FailAt(timeOfDay string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt = timeOfDay
}

// Counts returns the checkout and checkin totals.
func (s *Server) Counts() (checkOuts, checkIns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkOuts, s.checkIns
}

// SolvedTimes returns the times of day solved so far.
func (s *Server) SolvedTimes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.solves...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
