// Package trade produces cargo-movement demand for the simulation: a
// finite stream of orders with non-decreasing availability times, ready
// to be fed into the event queue without re-sorting.
//
// Generation is a pluggable capability selected by name: "poisson"
// samples a statistical demand process, "scripted" replays a fixed list
// from the scenario, and replay re-feeds orders recovered from a
// previous run log.
package trade

import (
	"fmt"
	"math/rand"
	"sort"
)

// Order is one unit of trade demand. Port references are plain
// identifiers; the kernel resolves them against its registry.
type Order struct {
	ID          string  `yaml:"id" json:"id"`
	Origin      string  `yaml:"origin" json:"origin"`
	Destination string  `yaml:"destination" json:"destination"`
	Volume      float64 `yaml:"volume" json:"volume"`
	Available   int64   `yaml:"available" json:"available"`
	Deadline    int64   `yaml:"deadline,omitempty" json:"deadline,omitempty"` // 0 = none
}

// Generator produces the demand for one run. Generate returns orders
// sorted by availability time; it must be deterministic for a fixed spec
// and RNG seed.
type Generator interface {
	Generate(horizon int64) ([]Order, error)
}

// Spec is the demand section of a scenario file.
type Spec struct {
	Mode string `yaml:"mode"` // "poisson" or "scripted"

	// Poisson parameters.
	Rate          float64 `yaml:"rate"` // mean orders per tick
	VolumeMean    float64 `yaml:"volume_mean"`
	VolumeStddev  float64 `yaml:"volume_stddev"`
	VolumeMin     float64 `yaml:"volume_min"`
	VolumeMax     float64 `yaml:"volume_max"`
	DeadlineSlack int64   `yaml:"deadline_slack"` // ticks after availability; 0 = no deadlines
	MaxOrders     int     `yaml:"max_orders"`     // 0 = horizon-bounded only

	// Scripted orders.
	Orders []Order `yaml:"orders"`
}

// Validate rejects a demand spec that could not produce a well-formed
// order stream. Fails at start, not mid-run.
func (s *Spec) Validate(knownPort func(string) bool) error {
	switch s.Mode {
	case "poisson":
		if s.Rate <= 0 {
			return fmt.Errorf("demand: poisson rate must be positive, got %v", s.Rate)
		}
		if s.VolumeMean <= 0 {
			return fmt.Errorf("demand: volume_mean must be positive, got %v", s.VolumeMean)
		}
		if s.VolumeMin < 0 || (s.VolumeMax > 0 && s.VolumeMax < s.VolumeMin) {
			return fmt.Errorf("demand: bad volume bounds [%v, %v]", s.VolumeMin, s.VolumeMax)
		}
		if s.DeadlineSlack < 0 {
			return fmt.Errorf("demand: negative deadline_slack")
		}
	case "scripted":
		seen := make(map[string]bool, len(s.Orders))
		for i, o := range s.Orders {
			if o.ID == "" {
				return fmt.Errorf("demand: order %d has no id", i)
			}
			if seen[o.ID] {
				return fmt.Errorf("demand: duplicate order id %q", o.ID)
			}
			seen[o.ID] = true
			if err := checkOrder(o); err != nil {
				return fmt.Errorf("demand: %w", err)
			}
			for _, p := range []string{o.Origin, o.Destination} {
				if !knownPort(p) {
					return fmt.Errorf("demand: order %s: unknown port %q", o.ID, p)
				}
			}
		}
	default:
		return fmt.Errorf("demand: unknown mode %q; valid modes: [poisson, scripted]", s.Mode)
	}
	return nil
}

// checkOrder rejects an order whose fields could not form a well-formed
// trade in any scenario. Port existence is checked separately, against
// the scenario's port list.
func checkOrder(o Order) error {
	if o.Volume <= 0 {
		return fmt.Errorf("order %s: non-positive volume", o.ID)
	}
	if o.Available < 0 {
		return fmt.Errorf("order %s: negative available time", o.ID)
	}
	if o.Deadline != 0 && o.Deadline < o.Available {
		return fmt.Errorf("order %s: deadline %d before availability %d", o.ID, o.Deadline, o.Available)
	}
	if o.Origin == o.Destination {
		return fmt.Errorf("order %s: origin equals destination", o.ID)
	}
	return nil
}

// New creates a generator for spec.Mode. ports lists candidate
// origin/destination ports in deterministic order; rng drives sampling
// for the statistical modes.
func New(spec *Spec, ports []string, rng *rand.Rand) (Generator, error) {
	switch spec.Mode {
	case "poisson":
		if len(ports) < 2 {
			return nil, fmt.Errorf("poisson demand needs at least 2 ports, have %d", len(ports))
		}
		return &PoissonGenerator{spec: spec, ports: ports, rng: rng}, nil
	case "scripted":
		return &ScriptedGenerator{orders: spec.Orders}, nil
	default:
		return nil, fmt.Errorf("unknown demand mode %q; valid modes: [poisson, scripted]", spec.Mode)
	}
}

// PoissonGenerator samples exponentially-distributed inter-arrival times
// and normally-distributed volumes, clamped to the configured bounds.
type PoissonGenerator struct {
	spec  *Spec
	ports []string
	rng   *rand.Rand
}

// Generate produces orders until the horizon or the configured order cap.
func (g *PoissonGenerator) Generate(horizon int64) ([]Order, error) {
	var orders []Order
	now := int64(0)
	for {
		iat := int64(g.rng.ExpFloat64() / g.spec.Rate)
		if iat < 1 {
			iat = 1
		}
		now += iat
		if now >= horizon {
			break
		}
		if g.spec.MaxOrders > 0 && len(orders) >= g.spec.MaxOrders {
			break
		}
		origin := g.ports[g.rng.Intn(len(g.ports))]
		dest := g.ports[g.rng.Intn(len(g.ports))]
		for dest == origin {
			dest = g.ports[g.rng.Intn(len(g.ports))]
		}
		vol := g.spec.VolumeMean + g.rng.NormFloat64()*g.spec.VolumeStddev
		if g.spec.VolumeMin > 0 && vol < g.spec.VolumeMin {
			vol = g.spec.VolumeMin
		}
		if vol < 1 {
			vol = 1
		}
		if g.spec.VolumeMax > 0 && vol > g.spec.VolumeMax {
			vol = g.spec.VolumeMax
		}
		var deadline int64
		if g.spec.DeadlineSlack > 0 {
			deadline = now + g.spec.DeadlineSlack
		}
		orders = append(orders, Order{
			ID:          fmt.Sprintf("trade_%04d", len(orders)),
			Origin:      origin,
			Destination: dest,
			Volume:      vol,
			Available:   now,
			Deadline:    deadline,
		})
	}
	return orders, nil
}

// ScriptedGenerator replays a fixed order list, sorted by availability.
type ScriptedGenerator struct {
	orders []Order
}

// Generate returns the scripted orders inside the horizon, sorted by
// (available, id) so equal-time orders keep a stable sequence.
func (g *ScriptedGenerator) Generate(horizon int64) ([]Order, error) {
	out := make([]Order, 0, len(g.orders))
	for _, o := range g.orders {
		if o.Available < horizon {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Available != out[j].Available {
			return out[i].Available < out[j].Available
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
