// The fleet policy capability: the kernel's contract with pluggable
// shipping-company decision logic. A policy may only recommend: it sees
// read-only views and network queries, never entity pointers.

package sim

import "github.com/freight-sim/freight-sim/sim/seanet"

// TradeOffer is the cargo demand presented to a fleet policy.
type TradeOffer struct {
	Cargo       CargoID
	Origin      PortID
	Destination PortID
	Volume      float64
	Now         int64
	Deadline    int64 // 0 = none
}

// VesselView is a read-only snapshot of one fleet vessel.
type VesselView struct {
	ID           VesselID
	At           PortID // port the vessel is berthed or waiting at; empty while transiting
	Idle         bool   // no pending mission tasks
	FreeCapacity float64
	Speed        float64
}

// FleetView is the state a policy may consider when deciding.
type FleetView struct {
	Fleet   FleetID
	Vessels []VesselView // deterministic fleet order
}

// NetworkQueries exposes the network model to policies. Unreachable is
// an ordinary ok=false result.
type NetworkQueries interface {
	Distance(from, to PortID) (float64, bool)
	Reachable(from, to PortID) bool
}

// Decision is a policy's answer to a trade offer.
type Decision struct {
	Accept bool
	Vessel VesselID
}

// Accept binds the offer to the given vessel.
func Accept(v VesselID) Decision { return Decision{Accept: true, Vessel: v} }

// Decline leaves the cargo on the market.
func Decline() Decision { return Decision{} }

// FleetPolicy decides which trades a fleet accepts and with which vessel.
// Must be callable synchronously and side-effect-free on entities it does
// not own. Implementations may keep internal state; the kernel invokes
// each fleet's policy from a single goroutine.
type FleetPolicy interface {
	Decide(offer TradeOffer, fleet FleetView, net NetworkQueries) Decision
}

// netQueries adapts the seanet graph to the PortID-typed policy contract.
type netQueries struct {
	g *seanet.Graph
}

func (n netQueries) Distance(from, to PortID) (float64, bool) {
	return n.g.Distance(string(from), string(to))
}

func (n netQueries) Reachable(from, to PortID) bool {
	return n.g.Reachable(string(from), string(to))
}
