// Package policy holds the built-in fleet policies behind the
// sim.FleetPolicy capability interface. Policies are constructed by name
// so scenarios can select them declaratively.
package policy

import (
	"fmt"

	"github.com/freight-sim/freight-sim/sim"
)

// ValidPolicies is the set of recognized fleet policy names.
var ValidPolicies = map[string]bool{"greedy": true, "eager": true, "decline": true}

// New creates a fleet policy by name.
// Valid names: "greedy", "eager", "decline".
func New(name string) (sim.FleetPolicy, error) {
	switch name {
	case "greedy":
		return &Greedy{}, nil
	case "eager":
		return &Eager{}, nil
	case "decline":
		return &AlwaysDecline{}, nil
	default:
		return nil, fmt.Errorf("unknown fleet policy %q; valid policies: [greedy, eager, decline]", name)
	}
}

// Greedy accepts with the idle vessel that can deliver earliest, and only
// if that delivery meets the offer's deadline. Unreachable origins or
// destinations and infeasible deadlines are declined.
type Greedy struct{}

func (g *Greedy) Decide(offer sim.TradeOffer, fleet sim.FleetView, net sim.NetworkQueries) sim.Decision {
	best := sim.Decline()
	var bestETA int64
	for _, v := range fleet.Vessels {
		if !v.Idle || v.At == "" || v.FreeCapacity < offer.Volume || v.Speed <= 0 {
			continue
		}
		toOrigin, ok := net.Distance(v.At, offer.Origin)
		if !ok {
			continue
		}
		toDest, ok := net.Distance(offer.Origin, offer.Destination)
		if !ok {
			continue
		}
		eta := offer.Now + sim.TravelTicks(toOrigin, v.Speed) + sim.TravelTicks(toDest, v.Speed)
		if offer.Deadline > 0 && eta > offer.Deadline {
			continue
		}
		// Fleet order breaks ETA ties, keeping decisions deterministic.
		if !best.Accept || eta < bestETA {
			best = sim.Accept(v.ID)
			bestETA = eta
		}
	}
	return best
}

// Eager accepts with the first idle vessel that has the capacity,
// ignoring deadlines. Useful as a stress baseline: it exercises late
// deliveries and expiry accounting.
type Eager struct{}

func (e *Eager) Decide(offer sim.TradeOffer, fleet sim.FleetView, net sim.NetworkQueries) sim.Decision {
	for _, v := range fleet.Vessels {
		if !v.Idle || v.At == "" || v.FreeCapacity < offer.Volume {
			continue
		}
		if !net.Reachable(v.At, offer.Origin) || !net.Reachable(offer.Origin, offer.Destination) {
			continue
		}
		return sim.Accept(v.ID)
	}
	return sim.Decline()
}

// AlwaysDecline declines every offer. Baseline: all cargo expires.
type AlwaysDecline struct{}

func (a *AlwaysDecline) Decide(sim.TradeOffer, sim.FleetView, sim.NetworkQueries) sim.Decision {
	return sim.Decline()
}
