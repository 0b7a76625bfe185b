// Event handlers: each mutates registry state for one event kind and
// schedules follow-up events. Handlers validate before committing, so a
// returned error leaves no partial mutation behind.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/freight-sim/freight-sim/sim/trace"
)

// handleTradeAvailable announces a cargo to the market and polls fleet
// policies in registration order. The first acceptance binds the cargo;
// no acceptance leaves it on the market until its deadline.
func (s *Simulator) handleTradeAvailable(ev Event) error {
	c, err := s.Registry.Cargo(ev.Cargo)
	if err != nil {
		return err
	}
	if err := s.Registry.OfferCargo(c.ID); err != nil {
		return err
	}
	s.record(ev, trace.OutcomeOffered, c.Volume)
	if c.Deadline > 0 {
		if err := s.Schedule(Event{Time: c.Deadline, Kind: EventTradeExpired, Cargo: c.ID}); err != nil {
			return err
		}
	}

	offer := TradeOffer{
		Cargo:       c.ID,
		Origin:      c.Origin,
		Destination: c.Destination,
		Volume:      c.Volume,
		Now:         s.Clock,
		Deadline:    c.Deadline,
	}
	for _, fid := range s.Registry.FleetOrder() {
		dec := s.Policies[fid].Decide(offer, s.fleetView(fid), s.queries)
		if !dec.Accept {
			continue
		}
		if err := s.acceptTrade(c, fid, dec.Vessel); err != nil {
			// A policy recommended an infeasible acceptance. The cargo
			// stays on the market; the fault is recorded by the loop.
			return fmt.Errorf("fleet %s acceptance of %s: %w", fid, c.ID, err)
		}
		s.Log.Append(trace.Record{
			Time:    s.Clock,
			Kind:    string(ev.Kind),
			Cargo:   string(c.ID),
			Vessel:  string(dec.Vessel),
			Outcome: trace.OutcomeAccepted,
		})
		return nil
	}
	s.record(ev, trace.OutcomeDeclined, 0)
	return nil
}

// acceptTrade validates a policy decision and binds the cargo to the
// vessel, appending the pickup-and-delivery mission tasks.
func (s *Simulator) acceptTrade(c *Cargo, fid FleetID, vid VesselID) error {
	v, err := s.Registry.Vessel(vid)
	if err != nil {
		return err
	}
	if v.Fleet != fid {
		return fmt.Errorf("vessel %s belongs to fleet %s, not %s", vid, v.Fleet, fid)
	}
	if err := s.Registry.AssignCargo(c.ID, vid); err != nil {
		return err
	}
	wasIdle := v.Idle()
	v.Tasks = append(v.Tasks,
		Task{Kind: TaskSail, Port: c.Origin},
		Task{Kind: TaskLoad, Cargo: c.ID},
		Task{Kind: TaskSail, Port: c.Destination},
		Task{Kind: TaskUnload, Cargo: c.ID},
	)
	if wasIdle && v.Position.Kind != PositionTransiting {
		return s.advanceMission(v)
	}
	return nil
}

// handleTradeExpired terminates cargo still on the market at its
// deadline. Cargo already bound to a vessel is left alone: late
// deliveries are the accepting policy's problem, not the kernel's.
func (s *Simulator) handleTradeExpired(ev Event) error {
	c, err := s.Registry.Cargo(ev.Cargo)
	if err != nil {
		return err
	}
	if c.Status != StatusPending && c.Status != StatusOffered {
		s.record(ev, trace.OutcomeNoop, 0)
		return nil
	}
	if err := s.Registry.ExpireCargo(c.ID); err != nil {
		return err
	}
	s.record(ev, trace.OutcomeExpired, c.Volume)
	return nil
}

// advanceMission pops satisfied tasks and schedules the event that
// executes the next one. It returns without scheduling when the vessel
// must first obtain a berth or complete a transit.
func (s *Simulator) advanceMission(v *Vessel) error {
	for {
		if len(v.Tasks) == 0 {
			return nil
		}
		t := v.Tasks[0]
		switch t.Kind {
		case TaskSail:
			if p, ok := v.AtPort(); ok && p == t.Port {
				v.popTask()
				continue
			}
			if v.Position.Kind == PositionTransiting {
				return nil // resumes on arrival
			}
			return s.Schedule(Event{Time: s.Clock, Kind: EventVesselDeparture, Vessel: v.ID, Port: v.Position.Port})
		case TaskLoad:
			if v.Position.Kind != PositionBerthed {
				return nil // resumes on berth grant
			}
			return s.Schedule(Event{Time: s.Clock + s.Config.LoadingDuration, Kind: EventLoadingComplete,
				Vessel: v.ID, Cargo: t.Cargo, Port: v.Position.Port})
		case TaskUnload:
			if v.Position.Kind != PositionBerthed {
				return nil
			}
			return s.Schedule(Event{Time: s.Clock + s.Config.UnloadingDuration, Kind: EventUnloadingComplete,
				Vessel: v.ID, Cargo: t.Cargo, Port: v.Position.Port})
		default:
			return fmt.Errorf("vessel %s: unknown task kind %s", v.ID, t.Kind)
		}
	}
}

// handleDeparture resolves the route for the vessel's sail task and puts
// the vessel on the first leg. Berthed departures free the berth and
// grant it to the head of the waiting queue at the same tick.
func (s *Simulator) handleDeparture(ev Event) error {
	v, err := s.Registry.Vessel(ev.Vessel)
	if err != nil {
		return err
	}
	if len(v.Tasks) == 0 || v.Tasks[0].Kind != TaskSail {
		return fmt.Errorf("vessel %s has no sail task at departure", v.ID)
	}
	dest := v.Tasks[0].Port

	from, atPort := v.AtPort()
	if !atPort {
		return fmt.Errorf("vessel %s departing while transiting", v.ID)
	}

	route, ok := s.Net.ShortestPath(string(from), string(dest))
	if !ok {
		// Disconnected ports are a normal network answer, but a vessel
		// holding a sail task it cannot run is a policy defect: drop the
		// mission serving that cargo and surface the fault.
		var cargo CargoID
		if len(v.Tasks) > 1 {
			cargo = v.Tasks[1].Cargo
		}
		v.popTask()
		if cargo != "" {
			v.dropCargoTasks(cargo)
		}
		return fmt.Errorf("no route %s -> %s for vessel %s", from, dest, v.ID)
	}
	if len(route.Legs) == 0 {
		// Already at the target; let the mission advance.
		v.popTask()
		return s.advanceMission(v)
	}

	wasBerthed := v.Position.Kind == PositionBerthed
	if wasBerthed {
		next, granted, err := s.Registry.ReleaseBerth(v.ID, s.Clock)
		if err != nil {
			return err
		}
		if granted {
			p, _ := s.Registry.Port(from)
			p.pendingGrants++
			if err := s.Schedule(Event{Time: s.Clock, Kind: EventBerthGranted, Vessel: next, Port: from}); err != nil {
				return err
			}
		}
	} else {
		p, err := s.Registry.Port(from)
		if err != nil {
			return err
		}
		p.removeWaiting(v.ID)
	}

	leg := route.Legs[0]
	eta := s.Clock + TravelTicks(leg.Distance, v.Speed)
	v.route = route.Legs
	v.legIdx = 0
	v.Position = Position{
		Kind:     PositionTransiting,
		From:     from,
		To:       PortID(leg.To),
		Departed: s.Clock,
		ETA:      eta,
	}
	outcome := trace.OutcomeDeparted
	if !wasBerthed {
		outcome = trace.OutcomeDepartedWaiting
	}
	s.recordMove(ev, outcome, from, PortID(leg.To))
	return s.Schedule(Event{Time: eta, Kind: EventVesselArrival, Vessel: v.ID, Port: PortID(leg.To)})
}

// handleArrival completes a transit leg. Waypoint arrivals (more legs
// remaining) sail on immediately without docking; final arrivals request
// a berth and join the FIFO waiting queue when the port is full.
func (s *Simulator) handleArrival(ev Event) error {
	v, err := s.Registry.Vessel(ev.Vessel)
	if err != nil {
		return err
	}
	if v.Position.Kind != PositionTransiting || v.Position.To != ev.Port {
		return fmt.Errorf("vessel %s arrival at %s does not match position", v.ID, ev.Port)
	}

	if v.legIdx+1 < len(v.route) {
		v.legIdx++
		leg := v.route[v.legIdx]
		eta := s.Clock + TravelTicks(leg.Distance, v.Speed)
		v.Position = Position{
			Kind:     PositionTransiting,
			From:     PortID(leg.From),
			To:       PortID(leg.To),
			Departed: s.Clock,
			ETA:      eta,
		}
		s.recordMove(ev, trace.OutcomeWaypoint, PortID(leg.From), PortID(leg.To))
		return s.Schedule(Event{Time: eta, Kind: EventVesselArrival, Vessel: v.ID, Port: PortID(leg.To)})
	}

	v.route = nil
	v.legIdx = 0
	if len(v.Tasks) > 0 && v.Tasks[0].Kind == TaskSail && v.Tasks[0].Port == ev.Port {
		v.popTask()
	}

	p, err := s.Registry.Port(ev.Port)
	if err != nil {
		return err
	}
	if p.Occupied+p.pendingGrants < p.Berths {
		if err := s.Registry.BerthVessel(v.ID, ev.Port, s.Clock); err != nil {
			return err
		}
		s.record(ev, trace.OutcomeBerthed, 0)
		return s.advanceMission(v)
	}
	p.enqueueWaiting(v.ID)
	v.Position = Position{Kind: PositionWaiting, Port: ev.Port}
	s.record(ev, trace.OutcomeQueued, 0)
	logrus.Debugf("[tick %07d] vessel %s waiting off %s (%d/%d berths)",
		s.Clock, v.ID, ev.Port, p.Occupied, p.Berths)
	return nil
}

// handleBerthGranted seats the head of the waiting queue at a freed
// berth.
func (s *Simulator) handleBerthGranted(ev Event) error {
	v, err := s.Registry.Vessel(ev.Vessel)
	if err != nil {
		return err
	}
	p, err := s.Registry.Port(ev.Port)
	if err != nil {
		return err
	}
	p.pendingGrants--
	if v.Position.Kind != PositionWaiting || v.Position.Port != ev.Port {
		return fmt.Errorf("vessel %s granted a berth at %s it is not waiting for", v.ID, ev.Port)
	}
	if err := s.Registry.BerthVessel(v.ID, ev.Port, s.Clock); err != nil {
		return err
	}
	s.record(ev, trace.OutcomeBerthed, 0)
	return s.advanceMission(v)
}

// handleLoadingComplete moves the cargo aboard and sails on.
func (s *Simulator) handleLoadingComplete(ev Event) error {
	v, err := s.Registry.Vessel(ev.Vessel)
	if err != nil {
		return err
	}
	if len(v.Tasks) == 0 || v.Tasks[0].Kind != TaskLoad || v.Tasks[0].Cargo != ev.Cargo {
		return fmt.Errorf("vessel %s has no load task for %s", v.ID, ev.Cargo)
	}
	c, err := s.Registry.Cargo(ev.Cargo)
	if err != nil {
		return err
	}
	if err := s.Registry.LoadCargo(c.ID, v.ID, s.Clock); err != nil {
		v.popTask()
		v.dropCargoTasks(c.ID)
		return err
	}
	v.popTask()
	s.record(ev, trace.OutcomeLoaded, c.Volume)
	s.recordLateness(ev, v, c)
	return s.advanceMission(v)
}

// recordLateness flags a load or delivery completing after the cargo's
// deadline. The kernel does not undo late work; it surfaces the window
// violation for the accepting fleet to answer for.
func (s *Simulator) recordLateness(ev Event, v *Vessel, c *Cargo) {
	if c.Deadline == 0 || s.Clock <= c.Deadline {
		return
	}
	logrus.Warnf("[tick %07d] fleet %s vessel %s handled cargo %s %d ticks past its deadline %d",
		s.Clock, v.Fleet, v.ID, c.ID, s.Clock-c.Deadline, c.Deadline)
	s.record(ev, trace.OutcomeLate, 0)
}

// handleUnloadingComplete discharges the cargo, delivering it.
func (s *Simulator) handleUnloadingComplete(ev Event) error {
	v, err := s.Registry.Vessel(ev.Vessel)
	if err != nil {
		return err
	}
	if len(v.Tasks) == 0 || v.Tasks[0].Kind != TaskUnload || v.Tasks[0].Cargo != ev.Cargo {
		return fmt.Errorf("vessel %s has no unload task for %s", v.ID, ev.Cargo)
	}
	c, err := s.Registry.Cargo(ev.Cargo)
	if err != nil {
		return err
	}
	if err := s.Registry.UnloadCargo(c.ID, v.ID, s.Clock); err != nil {
		v.popTask()
		v.dropCargoTasks(c.ID)
		return err
	}
	v.popTask()
	s.record(ev, trace.OutcomeDelivered, c.Volume)
	s.recordLateness(ev, v, c)
	logrus.Debugf("[tick %07d] cargo %s delivered by %s at %s", s.Clock, c.ID, v.ID, ev.Port)
	return s.advanceMission(v)
}
