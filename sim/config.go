package sim

import "fmt"

// Config groups the kernel run parameters. Scenario structure (ports,
// lanes, fleets, demand) lives in ScenarioSpec; Config is the opaque
// settings surface the CLI fills from flags.
type Config struct {
	Horizon int64 // run-length bound in ticks (must be > 0)
	Seed    int64 // master seed for the partitioned RNG

	FaultPolicy FaultPolicy // best-effort (default) or fail-fast

	// Cargo handling durations in ticks; zero means instantaneous.
	LoadingDuration   int64
	UnloadingDuration int64
}

// Validate rejects setting combinations that would violate a structural
// invariant. Fails at start, never mid-run.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	switch c.FaultPolicy {
	case FaultBestEffort, FaultFailFast:
	case "":
		return fmt.Errorf("fault policy not set; valid policies: [%s, %s]", FaultBestEffort, FaultFailFast)
	default:
		return fmt.Errorf("unknown fault policy %q; valid policies: [%s, %s]", c.FaultPolicy, FaultBestEffort, FaultFailFast)
	}
	if c.LoadingDuration < 0 || c.UnloadingDuration < 0 {
		return fmt.Errorf("handling durations must be non-negative")
	}
	return nil
}
