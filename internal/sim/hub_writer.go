package sim

import (
	"takeoff-sim/internal/telemetry"
	"takeoff-sim/internal/ws"
)

// HubWriter pushes cycle events and state samples to WebSocket clients.
type HubWriter struct {
	hub *ws.Hub
}

// NewHubWriter wraps a running hub.
func NewHubWriter(hub *ws.Hub) *HubWriter {
	return &HubWriter{hub: hub}
}

// WriteEvent broadcasts a cycle event.
func (w *HubWriter) WriteEvent(row telemetry.CycleEventRow) error {
	return w.hub.Broadcast("event", row)
}

// WriteState broadcasts a state sample.
func (w *HubWriter) WriteState(row telemetry.FlightStateRow) error {
	return w.hub.Broadcast("state", row)
}
