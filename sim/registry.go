// The entity registry: canonical records for ports, vessels, cargoes and
// fleets, keyed by stable identities and instantiated per run. Every
// mutation validates the structural invariants before committing, so a
// rejected mutation leaves no partial state behind.

package sim

import "fmt"

// Registry is the arena of simulation entities for one run. All mutation
// is funneled through the kernel's event handlers; nothing else writes
// entity state.
type Registry struct {
	ports   map[PortID]*Port
	vessels map[VesselID]*Vessel
	cargoes map[CargoID]*Cargo
	fleets  map[FleetID]*Fleet

	// Deterministic iteration orders, in registration sequence.
	portOrder  []PortID
	fleetOrder []FleetID
	cargoOrder []CargoID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ports:   make(map[PortID]*Port),
		vessels: make(map[VesselID]*Vessel),
		cargoes: make(map[CargoID]*Cargo),
		fleets:  make(map[FleetID]*Fleet),
	}
}

// === Registration (setup phase) ===

func (r *Registry) AddPort(p *Port) error {
	if _, dup := r.ports[p.ID]; dup {
		return fmt.Errorf("duplicate port %s", p.ID)
	}
	if p.Berths < 0 {
		return fmt.Errorf("port %s: negative berth capacity", p.ID)
	}
	r.ports[p.ID] = p
	r.portOrder = append(r.portOrder, p.ID)
	return nil
}

func (r *Registry) AddFleet(f *Fleet) error {
	if _, dup := r.fleets[f.ID]; dup {
		return fmt.Errorf("duplicate fleet %s", f.ID)
	}
	r.fleets[f.ID] = f
	r.fleetOrder = append(r.fleetOrder, f.ID)
	return nil
}

// AddVessel stations a vessel at its starting port, claiming a berth.
func (r *Registry) AddVessel(v *Vessel) error {
	if _, dup := r.vessels[v.ID]; dup {
		return fmt.Errorf("duplicate vessel %s", v.ID)
	}
	f, ok := r.fleets[v.Fleet]
	if !ok {
		return fmt.Errorf("vessel %s: fleet %s: %w", v.ID, v.Fleet, ErrUnknownEntity)
	}
	if v.Position.Kind != PositionBerthed {
		return fmt.Errorf("vessel %s must start berthed", v.ID)
	}
	p, ok := r.ports[v.Position.Port]
	if !ok {
		return fmt.Errorf("vessel %s: start port %s: %w", v.ID, v.Position.Port, ErrUnknownEntity)
	}
	if !p.HasFreeBerth() {
		return fmt.Errorf("vessel %s: port %s has no free berth at setup: %w", v.ID, p.ID, ErrCapacityExceeded)
	}
	if v.Manifest == nil {
		v.Manifest = make(map[CargoID]float64)
	}
	p.Occupied++
	r.vessels[v.ID] = v
	f.Vessels = append(f.Vessels, v.ID)
	return nil
}

// AddCargo registers a pending cargo produced by the trade generator.
func (r *Registry) AddCargo(c *Cargo) error {
	if _, dup := r.cargoes[c.ID]; dup {
		return fmt.Errorf("duplicate cargo %s", c.ID)
	}
	if _, ok := r.ports[c.Origin]; !ok {
		return fmt.Errorf("cargo %s: origin %s: %w", c.ID, c.Origin, ErrUnknownEntity)
	}
	if _, ok := r.ports[c.Destination]; !ok {
		return fmt.Errorf("cargo %s: destination %s: %w", c.ID, c.Destination, ErrUnknownEntity)
	}
	if c.Volume <= 0 {
		return fmt.Errorf("cargo %s: non-positive volume", c.ID)
	}
	c.Status = StatusPending
	r.cargoes[c.ID] = c
	r.cargoOrder = append(r.cargoOrder, c.ID)
	return nil
}

// === Lookup ===

func (r *Registry) Port(id PortID) (*Port, error) {
	p, ok := r.ports[id]
	if !ok {
		return nil, fmt.Errorf("port %s: %w", id, ErrUnknownEntity)
	}
	return p, nil
}

func (r *Registry) Vessel(id VesselID) (*Vessel, error) {
	v, ok := r.vessels[id]
	if !ok {
		return nil, fmt.Errorf("vessel %s: %w", id, ErrUnknownEntity)
	}
	return v, nil
}

func (r *Registry) Cargo(id CargoID) (*Cargo, error) {
	c, ok := r.cargoes[id]
	if !ok {
		return nil, fmt.Errorf("cargo %s: %w", id, ErrUnknownEntity)
	}
	return c, nil
}

func (r *Registry) Fleet(id FleetID) (*Fleet, error) {
	f, ok := r.fleets[id]
	if !ok {
		return nil, fmt.Errorf("fleet %s: %w", id, ErrUnknownEntity)
	}
	return f, nil
}

// FleetOrder returns fleet IDs in registration order.
func (r *Registry) FleetOrder() []FleetID { return r.fleetOrder }

// PortOrder returns port IDs in registration order.
func (r *Registry) PortOrder() []PortID { return r.portOrder }

// CargoOrder returns cargo IDs in registration order.
func (r *Registry) CargoOrder() []CargoID { return r.cargoOrder }

// === Kernel mutations ===

// OfferCargo announces a pending cargo to the market.
func (r *Registry) OfferCargo(id CargoID) error {
	c, err := r.Cargo(id)
	if err != nil {
		return err
	}
	return c.transition(StatusOffered)
}

// AssignCargo binds an offered cargo to a vessel, reserving capacity.
// Rejected with ErrCapacityExceeded if the vessel's committed volume
// would exceed its capacity; no state changes on rejection.
func (r *Registry) AssignCargo(id CargoID, vid VesselID) error {
	c, err := r.Cargo(id)
	if err != nil {
		return err
	}
	v, err := r.Vessel(vid)
	if err != nil {
		return err
	}
	if c.Status != StatusOffered {
		return fmt.Errorf("cargo %s is %s, not offered: %w", id, c.Status, ErrInvalidTransition)
	}
	if v.Committed+c.Volume > v.Capacity {
		return fmt.Errorf("vessel %s: committed %.1f + cargo %.1f > capacity %.1f: %w",
			vid, v.Committed, c.Volume, v.Capacity, ErrCapacityExceeded)
	}
	if err := c.transition(StatusAssigned); err != nil {
		return err
	}
	c.Vessel = vid
	v.Committed += c.Volume
	return nil
}

// LoadCargo moves an assigned cargo aboard its vessel. The vessel must be
// berthed at the cargo's origin and have manifest room.
func (r *Registry) LoadCargo(id CargoID, vid VesselID, now int64) error {
	c, err := r.Cargo(id)
	if err != nil {
		return err
	}
	v, err := r.Vessel(vid)
	if err != nil {
		return err
	}
	if c.Vessel != vid {
		return fmt.Errorf("cargo %s is not assigned to vessel %s", id, vid)
	}
	if c.Status != StatusAssigned {
		return fmt.Errorf("cargo %s is %s, not assigned: %w", id, c.Status, ErrInvalidTransition)
	}
	if v.Position.Kind != PositionBerthed || v.Position.Port != c.Origin {
		return fmt.Errorf("vessel %s is not berthed at origin %s", vid, c.Origin)
	}
	if v.ManifestVolume+c.Volume > v.Capacity {
		return fmt.Errorf("vessel %s: manifest %.1f + cargo %.1f > capacity %.1f: %w",
			vid, v.ManifestVolume, c.Volume, v.Capacity, ErrCapacityExceeded)
	}
	if err := c.transition(StatusLoaded); err != nil {
		return err
	}
	v.Manifest[id] = c.Volume
	v.ManifestVolume += c.Volume
	c.LoadedTime = now
	return nil
}

// UnloadCargo discharges a loaded cargo at its destination, delivering it
// and releasing the vessel's committed capacity.
func (r *Registry) UnloadCargo(id CargoID, vid VesselID, now int64) error {
	c, err := r.Cargo(id)
	if err != nil {
		return err
	}
	v, err := r.Vessel(vid)
	if err != nil {
		return err
	}
	if _, aboard := v.Manifest[id]; !aboard {
		return fmt.Errorf("cargo %s is not aboard vessel %s", id, vid)
	}
	if v.Position.Kind != PositionBerthed || v.Position.Port != c.Destination {
		return fmt.Errorf("vessel %s is not berthed at destination %s", vid, c.Destination)
	}
	if err := c.transition(StatusDelivered); err != nil {
		return err
	}
	delete(v.Manifest, id)
	v.ManifestVolume -= c.Volume
	v.Committed -= c.Volume
	c.DeliveredTime = now
	return nil
}

// ExpireCargo terminates a cargo that missed its window. The kernel calls
// this for deadline expiry (pending/offered only) and for end-of-run
// accounting of any non-terminal cargo.
func (r *Registry) ExpireCargo(id CargoID) error {
	c, err := r.Cargo(id)
	if err != nil {
		return err
	}
	if c.Vessel != "" && !c.Terminal() {
		// Release the reservation so the committed counter stays honest.
		if v, verr := r.Vessel(c.Vessel); verr == nil {
			if _, aboard := v.Manifest[id]; aboard {
				delete(v.Manifest, id)
				v.ManifestVolume -= c.Volume
			}
			v.Committed -= c.Volume
		}
	}
	return c.transition(StatusExpired)
}

// BerthVessel seats an arrived or waiting vessel at a berth.
func (r *Registry) BerthVessel(vid VesselID, pid PortID, now int64) error {
	v, err := r.Vessel(vid)
	if err != nil {
		return err
	}
	p, err := r.Port(pid)
	if err != nil {
		return err
	}
	if !p.HasFreeBerth() {
		return fmt.Errorf("port %s: %d/%d berths occupied: %w", pid, p.Occupied, p.Berths, ErrCapacityExceeded)
	}
	p.accrue(now)
	p.Occupied++
	v.Position = Position{Kind: PositionBerthed, Port: pid}
	return nil
}

// ReleaseBerth frees a berthed vessel's berth and returns the next waiting
// vessel, if any, which the kernel must grant the berth at the same tick.
func (r *Registry) ReleaseBerth(vid VesselID, now int64) (VesselID, bool, error) {
	v, err := r.Vessel(vid)
	if err != nil {
		return "", false, err
	}
	if v.Position.Kind != PositionBerthed {
		return "", false, fmt.Errorf("vessel %s is not berthed", vid)
	}
	p, err := r.Port(v.Position.Port)
	if err != nil {
		return "", false, err
	}
	p.accrue(now)
	p.Occupied--
	next, ok := p.dequeueWaiting()
	return next, ok, nil
}
