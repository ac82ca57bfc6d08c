// Package admin serves the browser console: a takeoff button, the altitude
// limit form, live state as JSON and a WebSocket event feed.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/sim"
	"takeoff-sim/internal/ws"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/index.html
var content embed.FS

// Server exposes a simulator over HTTP.
type Server struct {
	Sim *sim.Simulator
	hub *ws.Hub
	tpl *template.Template
	mux *http.ServeMux
	log *slog.Logger
}

// NewServer builds the console for s. hub may be nil, in which case the
// page falls back to polling /state.
func NewServer(s *sim.Simulator, hub *ws.Hub, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, hub: hub, tpl: tpl, mux: http.NewServeMux(), log: log}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("POST /takeoff", s.handleTakeoff)
	s.mux.HandleFunc("POST /altitude-limit", s.handleAltitudeLimit)
	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub.Handler())
	}
}

// Handler returns the console's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("admin console listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pageData struct {
	VehicleID string
	Bound     int
	MinBound  int
	MaxBound  int
	Status    string
	Live      bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.State()
	data := pageData{
		VehicleID: s.Sim.VehicleID(),
		Bound:     st.Bound,
		MinBound:  flight.MinBound,
		MaxBound:  flight.MaxBound,
		Status:    st.Status,
		Live:      s.hub != nil,
	}
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

type stateResponse struct {
	VehicleID string                `json:"vehicle_id"`
	State     flight.Snapshot       `json:"state"`
	Scheduler flight.SchedulerStats `json:"scheduler"`
	Clients   int                   `json:"ws_clients"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		VehicleID: s.Sim.VehicleID(),
		State:     s.Sim.State(),
		Scheduler: s.Sim.SchedulerStats(),
	}
	if s.hub != nil {
		resp.Clients = s.hub.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}

type takeoffResponse struct {
	Accepted bool            `json:"accepted"`
	State    flight.Snapshot `json:"state"`
}

func (s *Server) handleTakeoff(w http.ResponseWriter, r *http.Request) {
	accepted := s.Sim.Takeoff()
	code := http.StatusOK
	if !accepted {
		code = http.StatusConflict
	}
	writeJSON(w, code, takeoffResponse{Accepted: accepted, State: s.Sim.State()})
}

type altitudeRequest struct {
	Value json.RawMessage `json:"value"`
}

// altitudeInput extracts the raw value from a JSON body ({"value": 250} or
// {"value": "250"}) or a form field.
func altitudeInput(w http.ResponseWriter, r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req altitudeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			return "", err
		}
		var str string
		if err := json.Unmarshal(req.Value, &str); err == nil {
			return str, nil
		}
		return string(req.Value), nil
	}
	return r.FormValue("value"), nil
}

func (s *Server) handleAltitudeLimit(w http.ResponseWriter, r *http.Request) {
	input, err := altitudeInput(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	res, err := s.Sim.Controller().SetBoundInput(input)
	code := http.StatusOK
	if err != nil {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
