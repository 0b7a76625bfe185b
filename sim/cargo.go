// Defines the Cargo entity that models a unit of trade demand in the
// simulation. Tracks origin, destination, volume, time window, and the
// monotonic status lifecycle.

package sim

import "fmt"

// CargoStatus represents the lifecycle state of a cargo.
type CargoStatus string

const (
	StatusPending   CargoStatus = "pending"
	StatusOffered   CargoStatus = "offered"
	StatusAssigned  CargoStatus = "assigned"
	StatusLoaded    CargoStatus = "loaded"
	StatusDelivered CargoStatus = "delivered"
	StatusExpired   CargoStatus = "expired"
)

// cargoStatusRank orders the forward lifecycle. Expiry is handled
// separately in Cargo.transition because it branches off the main path.
var cargoStatusRank = map[CargoStatus]int{
	StatusPending:   0,
	StatusOffered:   1,
	StatusAssigned:  2,
	StatusLoaded:    3,
	StatusDelivered: 4,
}

// Cargo models a single cargo's lifecycle in the simulation.
// A cargo assigned to a vessel is exclusively owned by that vessel's
// manifest until unloaded.
type Cargo struct {
	ID          CargoID
	Origin      PortID
	Destination PortID
	Volume      float64

	AvailableTime int64 // tick at which the trade is announced
	Deadline      int64 // 0 = no deadline

	Status CargoStatus
	Vessel VesselID // assigned vessel, empty until assigned

	LoadedTime    int64
	DeliveredTime int64
}

// Terminal reports whether the cargo has reached a terminal status.
func (c *Cargo) Terminal() bool {
	return c.Status == StatusDelivered || c.Status == StatusExpired
}

// transition moves the cargo to the given status, enforcing monotonicity:
// the forward path pending → offered → assigned → loaded → delivered may
// not regress or skip a step; expired is reachable from any non-terminal
// status (trade expiry takes pending/offered cargo, end-of-run accounting
// takes the rest).
func (c *Cargo) transition(to CargoStatus) error {
	if c.Terminal() {
		return fmt.Errorf("cargo %s is %s: %w", c.ID, c.Status, ErrInvalidTransition)
	}
	if to == StatusExpired {
		c.Status = StatusExpired
		return nil
	}
	from, ok := cargoStatusRank[c.Status]
	rank, ok2 := cargoStatusRank[to]
	if !ok || !ok2 || rank != from+1 {
		return fmt.Errorf("cargo %s: %s -> %s: %w", c.ID, c.Status, to, ErrInvalidTransition)
	}
	c.Status = to
	return nil
}
