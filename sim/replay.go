// Log replay: applying a recorded run log to a fresh entity registry
// reproduces the run's final entity state without re-running any policy
// or network query. Used by the replay CLI command and the round-trip
// tests.

package sim

import (
	"fmt"

	"github.com/freight-sim/freight-sim/sim/trace"
	"github.com/freight-sim/freight-sim/sim/trade"
)

// ReplayLog applies a run log to a fresh registry built from the same
// scenario and demand. Records carry entity identities and outcomes, not
// state, so the replay drives the same registry mutations the live run
// performed. Fault records are skipped: the live handler committed
// nothing for them.
func ReplayLog(l *trace.Log, sc *ScenarioSpec, orders []trade.Order) (*Registry, error) {
	reg, err := sc.BuildRegistry()
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		c := &Cargo{
			ID:            CargoID(o.ID),
			Origin:        PortID(o.Origin),
			Destination:   PortID(o.Destination),
			Volume:        o.Volume,
			AvailableTime: o.Available,
			Deadline:      o.Deadline,
		}
		if err := reg.AddCargo(c); err != nil {
			return nil, err
		}
	}

	for _, r := range l.Records {
		if err := applyRecord(reg, r); err != nil {
			return nil, fmt.Errorf("replaying record %d (%s %s): %w", r.Seq, r.Kind, r.Outcome, err)
		}
	}
	return reg, nil
}

func applyRecord(reg *Registry, r trace.Record) error {
	switch r.Outcome {
	case trace.OutcomeOffered:
		return reg.OfferCargo(CargoID(r.Cargo))

	case trace.OutcomeAccepted:
		return reg.AssignCargo(CargoID(r.Cargo), VesselID(r.Vessel))

	case trace.OutcomeDeparted:
		_, _, err := reg.ReleaseBerth(VesselID(r.Vessel), r.Time)
		if err != nil {
			return err
		}
		return setTransiting(reg, r)

	case trace.OutcomeDepartedWaiting:
		v, err := reg.Vessel(VesselID(r.Vessel))
		if err != nil {
			return err
		}
		if p, perr := reg.Port(v.Position.Port); perr == nil {
			p.removeWaiting(v.ID)
		}
		return setTransiting(reg, r)

	case trace.OutcomeWaypoint:
		return setTransiting(reg, r)

	case trace.OutcomeBerthed:
		v, err := reg.Vessel(VesselID(r.Vessel))
		if err != nil {
			return err
		}
		if v.Position.Kind == PositionWaiting {
			if p, perr := reg.Port(v.Position.Port); perr == nil {
				p.removeWaiting(v.ID)
			}
		}
		return reg.BerthVessel(v.ID, PortID(r.Port), r.Time)

	case trace.OutcomeQueued:
		v, err := reg.Vessel(VesselID(r.Vessel))
		if err != nil {
			return err
		}
		p, err := reg.Port(PortID(r.Port))
		if err != nil {
			return err
		}
		p.enqueueWaiting(v.ID)
		v.Position = Position{Kind: PositionWaiting, Port: PortID(r.Port)}
		return nil

	case trace.OutcomeLoaded:
		return reg.LoadCargo(CargoID(r.Cargo), VesselID(r.Vessel), r.Time)

	case trace.OutcomeDelivered:
		return reg.UnloadCargo(CargoID(r.Cargo), VesselID(r.Vessel), r.Time)

	case trace.OutcomeExpired:
		return reg.ExpireCargo(CargoID(r.Cargo))

	default:
		// Declines, noops, and fault records committed no state.
		return nil
	}
}

func setTransiting(reg *Registry, r trace.Record) error {
	v, err := reg.Vessel(VesselID(r.Vessel))
	if err != nil {
		return err
	}
	v.Position = Position{
		Kind:     PositionTransiting,
		From:     PortID(r.Port),
		To:       PortID(r.Dest),
		Departed: r.Time,
	}
	return nil
}
