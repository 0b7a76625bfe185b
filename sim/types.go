package sim

// Identity types
type PortID string
type VesselID string
type CargoID string
type FleetID string

// EventKind tags the simulation event variants.
type EventKind string

const (
	EventTradeAvailable    EventKind = "TradeAvailable"
	EventTradeExpired      EventKind = "TradeExpired"
	EventVesselDeparture   EventKind = "VesselDeparture"
	EventVesselArrival     EventKind = "VesselArrival"
	EventBerthGranted      EventKind = "BerthGranted"
	EventLoadingComplete   EventKind = "LoadingComplete"
	EventUnloadingComplete EventKind = "UnloadingComplete"
)

// FaultPolicy selects how the kernel reacts to recoverable invariant
// violations inside handlers.
type FaultPolicy string

const (
	// FaultBestEffort records the fault and continues the run.
	FaultBestEffort FaultPolicy = "best-effort"
	// FaultFailFast aborts the run on the first fault, yielding a
	// partial report.
	FaultFailFast FaultPolicy = "fail-fast"
)

// Fleet groups vessels under one shipping company and names the policy
// deciding its trade acceptances.
type Fleet struct {
	ID      FleetID
	Name    string
	Policy  string
	Vessels []VesselID // deterministic view order for policies
}
