// Defines the Vessel entity and its position state machine. A vessel is
// in exactly one position state at any simulated instant: berthed at a
// port, waiting off a port for a berth, or transiting a lane.

package sim

import "github.com/freight-sim/freight-sim/sim/seanet"

// PositionKind discriminates the vessel position states.
type PositionKind string

const (
	PositionBerthed    PositionKind = "berthed"
	PositionWaiting    PositionKind = "waiting"
	PositionTransiting PositionKind = "transiting"
)

// Position is the tagged union of vessel position states.
type Position struct {
	Kind PositionKind

	// Port is set for berthed and waiting.
	Port PortID

	// Leg fields are set for transiting.
	From     PortID
	To       PortID
	Departed int64
	ETA      int64
}

// TaskKind discriminates mission tasks.
type TaskKind string

const (
	TaskSail   TaskKind = "sail"
	TaskLoad   TaskKind = "load"
	TaskUnload TaskKind = "unload"
)

// Task is one step of a vessel's mission. Accepting a trade appends
// sail/load/sail/unload tasks; the kernel advances the queue as events
// complete.
type Task struct {
	Kind  TaskKind
	Port  PortID  // sail target
	Cargo CargoID // load/unload subject
}

// Vessel models a single vessel for the whole run.
type Vessel struct {
	ID    VesselID
	Name  string
	Fleet FleetID

	Capacity float64 // max total manifest volume
	Speed    float64 // distance units per tick

	Position Position

	// Manifest maps cargo aboard to its volume. ManifestVolume is kept
	// in sync by the registry; it never exceeds Capacity.
	Manifest       map[CargoID]float64
	ManifestVolume float64

	// Committed is the volume of assigned-but-undelivered cargo,
	// including cargo not yet aboard. Acceptance feasibility is checked
	// against it so a policy cannot oversubscribe a vessel across trades.
	Committed float64

	Tasks []Task

	// route holds the remaining legs of the current sail task; legIdx
	// indexes the leg currently being transited.
	route  []seanet.Leg
	legIdx int
}

// Idle reports whether the vessel has no pending mission tasks.
func (v *Vessel) Idle() bool {
	return len(v.Tasks) == 0
}

// FreeCapacity is the volume still uncommitted on this vessel.
func (v *Vessel) FreeCapacity() float64 {
	return v.Capacity - v.Committed
}

// AtPort returns the port the vessel is berthed or waiting at, and false
// if the vessel is transiting.
func (v *Vessel) AtPort() (PortID, bool) {
	if v.Position.Kind == PositionTransiting {
		return "", false
	}
	return v.Position.Port, true
}

// popTask removes and returns the head mission task.
func (v *Vessel) popTask() (Task, bool) {
	if len(v.Tasks) == 0 {
		return Task{}, false
	}
	t := v.Tasks[0]
	v.Tasks = v.Tasks[1:]
	return t, true
}

// dropCargoTasks removes every remaining task that exists only to serve
// the given cargo: its load/unload, and the sail legs that immediately
// precede them. Called when a mission step for the cargo faults.
func (v *Vessel) dropCargoTasks(id CargoID) {
	kept := v.Tasks[:0]
	for i := 0; i < len(v.Tasks); i++ {
		t := v.Tasks[i]
		if t.Cargo == id {
			continue
		}
		if t.Kind == TaskSail && i+1 < len(v.Tasks) && v.Tasks[i+1].Cargo == id {
			continue
		}
		kept = append(kept, t)
	}
	v.Tasks = kept
}
