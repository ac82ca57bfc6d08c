package sim

import (
	"context"
	"time"

	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/telemetry"
)

// Run arms the scheduler and samples the plane until the context is done.
// The scheduler and any in-flight timer are stopped on return.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "vehicle_id", s.vehicleID, "tick_interval", s.tickInterval, "altitude_limit", s.ctrl.Bound())
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator", "scheduler", s.sched.Stats())
			return
		}
	}
}

// tick samples the controller and writes a state row. Idle is written once
// on entry and then skipped until the next takeoff.
func (s *Simulator) tick(ctx context.Context) {
	if s.stateWriter == nil {
		return
	}
	log := logging.FromContext(ctx)
	snap := s.ctrl.State()

	s.mu.Lock()
	prev := s.lastPhase
	s.lastPhase = snap.Phase
	s.mu.Unlock()
	if snap.Phase == flight.PhaseIdle && prev == flight.PhaseIdle {
		return
	}

	row := telemetry.NewFlightStateRow(s.vehicleID, snap)
	if bw, ok := s.stateWriter.(batchStateWriter); ok {
		if err := bw.WriteStates([]telemetry.FlightStateRow{row}); err != nil {
			log.Error("state batch write failed", "err", err)
		}
		return
	}
	if err := s.stateWriter.WriteState(row); err != nil {
		log.Error("state write failed", "cycle_id", row.CycleID, "err", err)
	}
}
