// Package trace provides the ordered run log of a simulation and the
// summary metrics derived from it. It stores pure data and has no
// dependency on sim/: the kernel appends records, reporting reads them.
package trace

// Record captures one dispatched event and its outcome. The sequence of
// records is sufficient to reconstruct every entity state transition of
// a run, and is byte-identical across runs with the same seed,
// configuration, and deterministic policies.
type Record struct {
	Seq    uint64  `json:"seq"`
	Time   int64   `json:"time"`
	Kind   string  `json:"kind"`
	Cargo  string  `json:"cargo,omitempty"`
	Vessel string  `json:"vessel,omitempty"`
	Port   string  `json:"port,omitempty"`
	Dest   string  `json:"dest,omitempty"` // next port for departure/waypoint records
	Volume float64 `json:"volume,omitempty"`

	// Outcome names what the handler did: "offered", "accepted",
	// "declined", "berthed", "queued", "waypoint", "departed", "loaded",
	// "delivered", "expired", or "fault: <reason>".
	Outcome string `json:"outcome"`
}

// Outcome vocabulary. Fault outcomes are "fault: " + reason.
const (
	OutcomeOffered   = "offered"
	OutcomeAccepted  = "accepted"
	OutcomeDeclined  = "declined"
	OutcomeBerthed   = "berthed"
	OutcomeQueued    = "queued"
	OutcomeWaypoint  = "waypoint"
	OutcomeDeparted  = "departed"
	OutcomeLoaded    = "loaded"
	OutcomeDelivered = "delivered"
	OutcomeExpired   = "expired"
	OutcomeNoop      = "noop"

	// OutcomeDepartedWaiting marks a vessel leaving the off-port queue
	// without ever holding a berth; it does not change occupancy.
	OutcomeDepartedWaiting = "departed-waiting"

	// OutcomeLate marks a load or delivery that completed after the
	// cargo's deadline. It follows the loaded/delivered record for the
	// same cargo and commits no state of its own.
	OutcomeLate = "late"

	FaultPrefix = "fault: "
)
