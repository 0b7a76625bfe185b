package sim

import (
	"testing"

	"github.com/freight-sim/freight-sim/sim/trade"
)

// acceptFirstIdle is the test stand-in for an accepting policy: first
// idle vessel with the capacity, reachability checked.
type acceptFirstIdle struct{}

func (acceptFirstIdle) Decide(offer TradeOffer, fleet FleetView, net NetworkQueries) Decision {
	for _, v := range fleet.Vessels {
		if !v.Idle || v.At == "" || v.FreeCapacity < offer.Volume {
			continue
		}
		if !net.Reachable(v.At, offer.Origin) || !net.Reachable(offer.Origin, offer.Destination) {
			continue
		}
		return Accept(v.ID)
	}
	return Decline()
}

// acceptBlindly ignores reachability, exercising the kernel's route
// fault path.
type acceptBlindly struct{}

func (acceptBlindly) Decide(offer TradeOffer, fleet FleetView, net NetworkQueries) Decision {
	for _, v := range fleet.Vessels {
		if v.Idle && v.At != "" && v.FreeCapacity >= offer.Volume {
			return Accept(v.ID)
		}
	}
	return Decline()
}

// declineAll declines everything.
type declineAll struct{}

func (declineAll) Decide(TradeOffer, FleetView, NetworkQueries) Decision {
	return Decline()
}

// testFactory resolves the policy names used by test scenarios.
func testFactory(name string) (FleetPolicy, error) {
	switch name {
	case "blind":
		return acceptBlindly{}, nil
	case "decline":
		return declineAll{}, nil
	default:
		return acceptFirstIdle{}, nil
	}
}

// testScenario is a two-port line: A (2 berths) -- 5 --> B (1 berth),
// with two vessels of speed 1 stationed at A.
func testScenario(policy string, orders []trade.Order) *ScenarioSpec {
	return &ScenarioSpec{
		Name: "line",
		Ports: []PortSpec{
			{ID: "A", Berths: 2},
			{ID: "B", Berths: 1},
		},
		Lanes: []LaneSpec{
			{From: "A", To: "B", Distance: 5},
		},
		Fleets: []FleetSpec{
			{ID: "f1", Policy: policy, Vessels: []VesselSpec{
				{ID: "v1", Capacity: 100, Speed: 1, StartPort: "A"},
				{ID: "v2", Capacity: 100, Speed: 1, StartPort: "A"},
			}},
		},
		Demand: trade.Spec{Mode: "scripted", Orders: orders},
	}
}

// runScenario builds, injects, and runs a scenario to completion.
func runScenario(t *testing.T, sc *ScenarioSpec, cfg Config, orders []trade.Order) *Simulator {
	t.Helper()
	s, err := sc.BuildSimulator(cfg, testFactory)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InjectOrders(orders); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	return s
}

func testConfig(horizon int64) Config {
	return Config{Horizon: horizon, Seed: 42, FaultPolicy: FaultBestEffort}
}
