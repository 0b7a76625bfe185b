package sim

import "errors"

// Kernel error taxonomy. NotReachable is deliberately absent: network
// queries report it as an ordinary (value, ok) result, not an error.
var (
	// ErrCapacityExceeded reports a mutation that would overbook a berth
	// or overload a vessel manifest. Recoverable: the mutation is rejected
	// and recorded as a fault, committed state is untouched.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrCausalityViolation reports an event scheduled before the current
	// simulation clock. Fatal: it indicates a defect in a handler or
	// policy, and aborts the run regardless of fault policy.
	ErrCausalityViolation = errors.New("causality violation")

	// ErrUnknownEntity reports a reference to an identity the registry
	// does not hold.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidTransition reports a cargo status change that would
	// regress or skip the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
