// sim/simulator.go
//
// The simulation kernel: holds the clock, the event queue, the entity
// registry, and the per-fleet policies, and runs the discrete-event loop.

package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/freight-sim/freight-sim/sim/seanet"
	"github.com/freight-sim/freight-sim/sim/trace"
	"github.com/freight-sim/freight-sim/sim/trade"
)

// handlerFunc mutates simulation state for one event. An error aborts
// the handler's remaining side effects; committed registry mutations are
// individually atomic, so no torn state survives.
type handlerFunc func(*Simulator, Event) error

// Simulator is the core object that holds simulation time, system state,
// and the event loop. One Simulator per run; independent runs share
// nothing.
type Simulator struct {
	Clock  int64
	Config Config

	Registry *Registry
	Net      *seanet.Graph
	Policies map[FleetID]FleetPolicy

	Queue *EventHeap
	Log   *trace.Log

	handlers map[EventKind]handlerFunc
	queries  NetworkQueries

	// FatalErr is set when the run aborts (causality violation, or the
	// first fault under fail-fast). The log up to the failure point is
	// preserved for diagnosis.
	FatalErr error
	Faults   int
}

// NewSimulator wires a kernel from validated parts. policies must hold
// an entry for every registered fleet.
func NewSimulator(cfg Config, reg *Registry, net *seanet.Graph, policies map[FleetID]FleetPolicy) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	for _, fid := range reg.FleetOrder() {
		if policies[fid] == nil {
			return nil, fmt.Errorf("fleet %s has no policy", fid)
		}
	}
	s := &Simulator{
		Config:   cfg,
		Registry: reg,
		Net:      net,
		Policies: policies,
		Queue:    NewEventHeap(),
		Log:      trace.NewLog(),
		queries:  netQueries{g: net},
	}
	s.handlers = map[EventKind]handlerFunc{
		EventTradeAvailable:    (*Simulator).handleTradeAvailable,
		EventTradeExpired:      (*Simulator).handleTradeExpired,
		EventVesselDeparture:   (*Simulator).handleDeparture,
		EventVesselArrival:     (*Simulator).handleArrival,
		EventBerthGranted:      (*Simulator).handleBerthGranted,
		EventLoadingComplete:   (*Simulator).handleLoadingComplete,
		EventUnloadingComplete: (*Simulator).handleUnloadingComplete,
	}
	return s, nil
}

// TravelTicks converts a distance at a speed into whole ticks, with a
// one-tick floor so movement always advances the clock.
func TravelTicks(distance, speed float64) int64 {
	if distance <= 0 {
		return 0
	}
	t := int64(math.Ceil(distance / speed))
	if t < 1 {
		t = 1
	}
	return t
}

// Schedule adds an event to the queue. Scheduling into the past is a
// programming error and fails with ErrCausalityViolation instead of
// being silently clamped.
func (s *Simulator) Schedule(ev Event) error {
	if ev.Time < s.Clock {
		return fmt.Errorf("event %s scheduled at %d before clock %d: %w",
			ev.Kind, ev.Time, s.Clock, ErrCausalityViolation)
	}
	s.Queue.Schedule(ev)
	return nil
}

// InjectOrders registers the generated demand and schedules its
// trade-available events. Orders must carry non-negative availability
// times; the generator contract keeps them sorted.
func (s *Simulator) InjectOrders(orders []trade.Order) error {
	for _, o := range orders {
		if o.Available < 0 {
			return fmt.Errorf("order %s: negative availability time %d", o.ID, o.Available)
		}
		c := &Cargo{
			ID:            CargoID(o.ID),
			Origin:        PortID(o.Origin),
			Destination:   PortID(o.Destination),
			Volume:        o.Volume,
			AvailableTime: o.Available,
			Deadline:      o.Deadline,
		}
		if err := s.Registry.AddCargo(c); err != nil {
			return err
		}
		if err := s.Schedule(Event{Time: o.Available, Kind: EventTradeAvailable, Cargo: c.ID}); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the event loop until the queue drains or the horizon is
// reached. In-flight events beyond the horizon are discarded; every
// non-terminal cargo is then marked expired so the report accounts for
// all demand. Best-effort mode records faults and continues; fail-fast
// aborts on the first fault. A causality violation always aborts.
func (s *Simulator) Run() error {
	for {
		ev, ok := s.Queue.Peek()
		if !ok {
			break
		}
		if ev.Time > s.Config.Horizon {
			s.Clock = s.Config.Horizon
			break
		}
		s.Queue.PopNext()
		s.Clock = ev.Time
		logrus.Debugf("[tick %07d] dispatching %s", s.Clock, ev)

		h, ok := s.handlers[ev.Kind]
		if !ok {
			s.FatalErr = fmt.Errorf("no handler for event kind %s", ev.Kind)
			return s.FatalErr
		}
		if err := h(s, ev); err != nil {
			if errors.Is(err, ErrCausalityViolation) {
				logrus.Errorf("[tick %07d] fatal: %v", s.Clock, err)
				s.FatalErr = err
				return err
			}
			s.Faults++
			s.record(ev, trace.FaultPrefix+err.Error(), 0)
			logrus.Warnf("[tick %07d] fault in %s: %v", s.Clock, ev.Kind, err)
			if s.Config.FaultPolicy == FaultFailFast {
				s.FatalErr = err
				return err
			}
		}
	}
	s.expireRemaining()
	logrus.Debugf("[tick %07d] simulation ended", s.Clock)
	return nil
}

// expireRemaining closes out every cargo that never reached a terminal
// status, so nothing vanishes from the accounting.
func (s *Simulator) expireRemaining() {
	for _, id := range s.Registry.CargoOrder() {
		c, err := s.Registry.Cargo(id)
		if err != nil || c.Terminal() {
			continue
		}
		if err := s.Registry.ExpireCargo(id); err != nil {
			logrus.Warnf("expiring %s at end of run: %v", id, err)
			continue
		}
		s.Log.Append(trace.Record{
			Time:    s.Clock,
			Kind:    string(EventTradeExpired),
			Cargo:   string(id),
			Volume:  c.Volume,
			Outcome: trace.OutcomeExpired,
		})
	}
}

// record appends a run-log record for the given event at the current
// clock.
func (s *Simulator) record(ev Event, outcome string, volume float64) {
	s.Log.Append(trace.Record{
		Time:    s.Clock,
		Kind:    string(ev.Kind),
		Cargo:   string(ev.Cargo),
		Vessel:  string(ev.Vessel),
		Port:    string(ev.Port),
		Volume:  volume,
		Outcome: outcome,
	})
}

// recordMove appends a departure/waypoint record carrying the next port.
func (s *Simulator) recordMove(ev Event, outcome string, from PortID, next PortID) {
	s.Log.Append(trace.Record{
		Time:    s.Clock,
		Kind:    string(ev.Kind),
		Vessel:  string(ev.Vessel),
		Port:    string(from),
		Dest:    string(next),
		Outcome: outcome,
	})
}

// fleetView snapshots a fleet for its policy.
func (s *Simulator) fleetView(fid FleetID) FleetView {
	view := FleetView{Fleet: fid}
	f, err := s.Registry.Fleet(fid)
	if err != nil {
		return view
	}
	for _, vid := range f.Vessels {
		v, err := s.Registry.Vessel(vid)
		if err != nil {
			continue
		}
		vv := VesselView{
			ID:           v.ID,
			Idle:         v.Idle(),
			FreeCapacity: v.FreeCapacity(),
			Speed:        v.Speed,
		}
		if p, ok := v.AtPort(); ok {
			vv.At = p
		}
		view.Vessels = append(view.Vessels, vv)
	}
	return view
}
