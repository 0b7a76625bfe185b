// Package sim provides the core discrete-event simulation engine for the
// freight emulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - cargo.go, vessel.go, port.go: entity lifecycles and their invariants
//   - event.go: the event kinds that drive the simulation
//   - simulator.go: the event loop, handler table, and mission advancement
//
// # Architecture
//
// The sim package owns the kernel and the entity registry; collaborators
// live in sub-packages:
//   - sim/seanet/: the immutable port network and shortest-path queries
//   - sim/policy/: built-in fleet policies behind the FleetPolicy interface
//   - sim/trade/: demand generation (poisson, scripted, replay)
//   - sim/trace/: run log records and summary metrics
//
// All entity mutation is funneled through the kernel's event handlers; a
// run owns its Registry, EventHeap, and RNG, so independent runs may
// execute in parallel without shared state.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - FleetPolicy: accept or decline trade offers, choose the vessel
//   - NetworkQueries: distance and reachability, as exposed to policies
//   - trade.Generator: produce a time-ordered stream of trade orders
package sim
