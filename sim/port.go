// Defines the Port entity: berth capacity, current occupancy, and the
// FIFO queue of vessels waiting off-port for a berth.

package sim

// Port models a port for the whole run. Topology (position, lanes) is
// immutable after setup; only the occupancy counters mutate.
type Port struct {
	ID   PortID
	Name string
	X, Y float64

	// Berths is the maximum number of concurrently berthed vessels.
	Berths int

	// Occupied is the current berthed count. Invariant: 0 <= Occupied <= Berths.
	Occupied int

	// Waiting holds vessels off-port in arrival order. Admission is
	// strictly FIFO: the head is granted the next freed berth.
	Waiting []VesselID

	// pendingGrants counts berths freed this tick whose grant event is
	// still in flight, so a same-tick arrival cannot jump the FIFO.
	pendingGrants int

	// busyTicks integrates Occupied over time for utilization reporting.
	busyTicks  int64
	lastChange int64
}

// HasFreeBerth reports whether a berth is available right now.
func (p *Port) HasFreeBerth() bool {
	return p.Occupied < p.Berths
}

// accrue folds the occupancy since the last change into busyTicks.
func (p *Port) accrue(now int64) {
	if now > p.lastChange {
		p.busyTicks += int64(p.Occupied) * (now - p.lastChange)
		p.lastChange = now
	}
}

// enqueueWaiting appends a vessel to the off-port FIFO.
func (p *Port) enqueueWaiting(v VesselID) {
	p.Waiting = append(p.Waiting, v)
}

// dequeueWaiting pops the head of the off-port FIFO.
func (p *Port) dequeueWaiting() (VesselID, bool) {
	if len(p.Waiting) == 0 {
		return "", false
	}
	v := p.Waiting[0]
	p.Waiting = p.Waiting[1:]
	return v, true
}

// removeWaiting deletes a specific vessel from the FIFO, preserving order.
// Used when a waiting vessel departs without ever berthing.
func (p *Port) removeWaiting(v VesselID) bool {
	for i, w := range p.Waiting {
		if w == v {
			p.Waiting = append(p.Waiting[:i], p.Waiting[i+1:]...)
			return true
		}
	}
	return false
}

// BusyTicks returns the occupancy integral up to now.
func (p *Port) BusyTicks(now int64) int64 {
	p.accrue(now)
	return p.busyTicks
}
