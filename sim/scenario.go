// Scenario configuration: the yaml description of ports, lanes, fleets,
// and demand that a run is built from. Loading validates everything up
// front; a combination that would violate a structural invariant fails
// at start, never mid-run.

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freight-sim/freight-sim/sim/seanet"
	"github.com/freight-sim/freight-sim/sim/trace"
	"github.com/freight-sim/freight-sim/sim/trade"
)

// PortSpec describes one port.
type PortSpec struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name,omitempty"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Berths int     `yaml:"berths"`
}

// LaneSpec describes one navigable lane.
type LaneSpec struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Distance float64 `yaml:"distance"`
	OneWay   bool    `yaml:"one_way,omitempty"`
}

// VesselSpec describes one vessel and its starting berth.
type VesselSpec struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name,omitempty"`
	Capacity  float64 `yaml:"capacity"`
	Speed     float64 `yaml:"speed"`
	StartPort string  `yaml:"start_port"`
}

// FleetSpec describes one shipping company.
type FleetSpec struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name,omitempty"`
	Policy  string       `yaml:"policy"`
	Vessels []VesselSpec `yaml:"vessels"`
}

// ScenarioSpec is the top-level scenario configuration, loaded from yaml
// via LoadScenario(path).
type ScenarioSpec struct {
	Name   string      `yaml:"name,omitempty"`
	Ports  []PortSpec  `yaml:"ports"`
	Lanes  []LaneSpec  `yaml:"lanes"`
	Fleets []FleetSpec `yaml:"fleets"`
	Demand trade.Spec  `yaml:"demand"`
}

// LoadScenario reads and parses a yaml scenario file.
func LoadScenario(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var spec ScenarioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// Validate rejects a scenario that could not be instantiated without
// violating a structural invariant.
func (sc *ScenarioSpec) Validate() error {
	if len(sc.Ports) == 0 {
		return fmt.Errorf("scenario has no ports")
	}
	ports := make(map[string]*PortSpec, len(sc.Ports))
	for i := range sc.Ports {
		p := &sc.Ports[i]
		if p.ID == "" {
			return fmt.Errorf("port %d has no id", i)
		}
		if _, dup := ports[p.ID]; dup {
			return fmt.Errorf("duplicate port id %q", p.ID)
		}
		if p.Berths < 0 {
			return fmt.Errorf("port %s: negative berth capacity", p.ID)
		}
		ports[p.ID] = p
	}
	for _, l := range sc.Lanes {
		for _, end := range []string{l.From, l.To} {
			if _, ok := ports[end]; !ok {
				return fmt.Errorf("lane %s->%s: unknown port %q", l.From, l.To, end)
			}
		}
		if l.Distance <= 0 {
			return fmt.Errorf("lane %s->%s: non-positive distance", l.From, l.To)
		}
	}

	stationed := make(map[string]int)
	fleetIDs := make(map[string]bool)
	vesselIDs := make(map[string]bool)
	for _, f := range sc.Fleets {
		if f.ID == "" {
			return fmt.Errorf("fleet with no id")
		}
		if fleetIDs[f.ID] {
			return fmt.Errorf("duplicate fleet id %q", f.ID)
		}
		fleetIDs[f.ID] = true
		if f.Policy == "" {
			return fmt.Errorf("fleet %s has no policy", f.ID)
		}
		for _, v := range f.Vessels {
			if v.ID == "" {
				return fmt.Errorf("fleet %s: vessel with no id", f.ID)
			}
			if vesselIDs[v.ID] {
				return fmt.Errorf("duplicate vessel id %q", v.ID)
			}
			vesselIDs[v.ID] = true
			if v.Capacity <= 0 {
				return fmt.Errorf("vessel %s: non-positive capacity", v.ID)
			}
			if v.Speed <= 0 {
				return fmt.Errorf("vessel %s: non-positive speed", v.ID)
			}
			p, ok := ports[v.StartPort]
			if !ok {
				return fmt.Errorf("vessel %s: unknown start port %q", v.ID, v.StartPort)
			}
			stationed[v.StartPort]++
			if stationed[v.StartPort] > p.Berths {
				return fmt.Errorf("port %s: %d vessels stationed at %d berths",
					v.StartPort, stationed[v.StartPort], p.Berths)
			}
		}
	}

	known := func(id string) bool { _, ok := ports[id]; return ok }
	if err := sc.Demand.Validate(known); err != nil {
		return err
	}
	return nil
}

// PortIDs returns the scenario's port identifiers in declaration order.
func (sc *ScenarioSpec) PortIDs() []string {
	ids := make([]string, len(sc.Ports))
	for i, p := range sc.Ports {
		ids[i] = p.ID
	}
	return ids
}

// BuildGraph constructs the immutable network model.
func (sc *ScenarioSpec) BuildGraph() (*seanet.Graph, error) {
	lanes := make([]seanet.Lane, len(sc.Lanes))
	for i, l := range sc.Lanes {
		lanes[i] = seanet.Lane{From: l.From, To: l.To, Distance: l.Distance, OneWay: l.OneWay}
	}
	return seanet.Build(sc.PortIDs(), lanes)
}

// BuildRegistry instantiates the per-run entity arena.
func (sc *ScenarioSpec) BuildRegistry() (*Registry, error) {
	reg := NewRegistry()
	for _, p := range sc.Ports {
		if err := reg.AddPort(&Port{ID: PortID(p.ID), Name: p.Name, X: p.X, Y: p.Y, Berths: p.Berths}); err != nil {
			return nil, err
		}
	}
	for _, f := range sc.Fleets {
		if err := reg.AddFleet(&Fleet{ID: FleetID(f.ID), Name: f.Name, Policy: f.Policy}); err != nil {
			return nil, err
		}
		for _, v := range f.Vessels {
			vessel := &Vessel{
				ID:       VesselID(v.ID),
				Name:     v.Name,
				Fleet:    FleetID(f.ID),
				Capacity: v.Capacity,
				Speed:    v.Speed,
				Position: Position{Kind: PositionBerthed, Port: PortID(v.StartPort)},
				Manifest: make(map[CargoID]float64),
			}
			if err := reg.AddVessel(vessel); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

// PortInfos supplies the static port facts the report layer needs.
func (sc *ScenarioSpec) PortInfos() map[string]trace.PortInfo {
	infos := make(map[string]trace.PortInfo, len(sc.Ports))
	stationed := make(map[string]int)
	for _, f := range sc.Fleets {
		for _, v := range f.Vessels {
			stationed[v.StartPort]++
		}
	}
	for _, p := range sc.Ports {
		infos[p.ID] = trace.PortInfo{Berths: p.Berths, InitialOccupied: stationed[p.ID]}
	}
	return infos
}

// GenerateOrders runs the scenario's demand generator under the config's
// master seed.
func (sc *ScenarioSpec) GenerateOrders(cfg Config) ([]trade.Order, error) {
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed)).ForSubsystem(SubsystemDemand)
	gen, err := trade.New(&sc.Demand, sc.PortIDs(), rng)
	if err != nil {
		return nil, err
	}
	return gen.Generate(cfg.Horizon)
}

// PolicyFactory constructs a fleet policy from its scenario name. The
// built-ins live in sim/policy; the indirection keeps custom policies
// pluggable without the kernel importing them.
type PolicyFactory func(name string) (FleetPolicy, error)

// BuildSimulator assembles a ready-to-run kernel for this scenario.
func (sc *ScenarioSpec) BuildSimulator(cfg Config, factory PolicyFactory) (*Simulator, error) {
	graph, err := sc.BuildGraph()
	if err != nil {
		return nil, err
	}
	reg, err := sc.BuildRegistry()
	if err != nil {
		return nil, err
	}
	policies := make(map[FleetID]FleetPolicy, len(sc.Fleets))
	for _, f := range sc.Fleets {
		p, err := factory(f.Policy)
		if err != nil {
			return nil, fmt.Errorf("fleet %s: %w", f.ID, err)
		}
		policies[FleetID(f.ID)] = p
	}
	return NewSimulator(cfg, reg, graph, policies)
}
