// Defines the Event variant type that drives the simulation. Events are
// a tagged union: a timestamp, a kind, and entity references, never
// duplicated entity state. Dispatch goes through the kernel's handler
// table keyed by kind.

package sim

import "fmt"

// Event is one scheduled occurrence in simulated time. The zero values
// of the reference fields mean "not involved".
type Event struct {
	Time int64
	Kind EventKind

	Cargo  CargoID
	Vessel VesselID
	Port   PortID
}

func (e Event) String() string {
	s := fmt.Sprintf("%s@%d", e.Kind, e.Time)
	if e.Cargo != "" {
		s += fmt.Sprintf(" cargo=%s", e.Cargo)
	}
	if e.Vessel != "" {
		s += fmt.Sprintf(" vessel=%s", e.Vessel)
	}
	if e.Port != "" {
		s += fmt.Sprintf(" port=%s", e.Port)
	}
	return s
}
