// Package api serves a read-only JSON view of the running department.
//
// Every request takes a fresh snapshot from the engine goroutine; handlers never touch
// live engine state.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sim"
)

// DefaultSnapshotTimeout bounds how long a request waits for the engine.
const DefaultSnapshotTimeout = 5 * time.Second

// SnapshotSource supplies department snapshots. *sim.Driver implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*sim.DepartmentSnapshot, error)
}

// DepartmentSummary is the department without its visits.
type DepartmentSummary struct {
	ID             string                  `json:"id"`
	At             time.Time               `json:"at"`
	Clinicians     []sim.ClinicianSnapshot `json:"clinicians"`
	BusyClinicians int                     `json:"busy_clinicians"`
	Waiting        int                     `json:"waiting"`
	BeingSeen      int                     `json:"being_seen"`
	Discharged     int                     `json:"discharged"`
	TotalVisits    int                     `json:"total_visits"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	src     SnapshotSource
	timeout time.Duration
}

// NewRouter builds the HTTP routes. A non-positive timeout uses DefaultSnapshotTimeout.
func NewRouter(src SnapshotSource, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	h := &handler{src: src, timeout: timeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/department", h.department)
		r.Get("/visits", h.visits)
		r.Get("/visits/{visitID}", h.visit)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) department(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DepartmentSummary{
		ID:             snap.ID,
		At:             snap.At,
		Clinicians:     snap.Clinicians,
		BusyClinicians: snap.BusyClinicians,
		Waiting:        snap.Waiting,
		BeingSeen:      snap.BeingSeen,
		Discharged:     snap.Discharged,
		TotalVisits:    len(snap.Visits),
	})
}

func (h *handler) visits(w http.ResponseWriter, r *http.Request) {
	state := sim.VisitState(r.URL.Query().Get("state"))
	switch state {
	case "", sim.StateWaitingToBeSeen, sim.StateBeingSeen, sim.StateDischarged:
	default:
		writeError(w, http.StatusBadRequest, "unknown visit state "+string(state))
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	out := make([]sim.VisitSnapshot, 0, len(snap.Visits))
	for _, v := range snap.Visits {
		if state == "" || v.State == state {
			out = append(out, v)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) visit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "visitID")
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	for _, v := range snap.Visits {
		if v.ID == id {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	writeError(w, http.StatusNotFound, "visit "+id+" not found")
}

// snapshot fetches a snapshot or writes the matching error response.
func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) (*sim.DepartmentSnapshot, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.src.Snapshot(ctx)
	switch {
	case err == nil:
		return snap, true
	case errors.Is(err, sim.ErrDriverStopped):
		writeError(w, http.StatusServiceUnavailable, "simulation is not running")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timed out waiting for the simulation")
	default:
		logrus.Errorf("Snapshot failed: %v", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
