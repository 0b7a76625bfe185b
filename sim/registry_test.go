package sim

import (
	"errors"
	"testing"
)

// testRegistry builds a two-port arena with one fleet and one vessel
// berthed at port A.
func testRegistry(t *testing.T, capacity float64) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.AddPort(&Port{ID: "A", Berths: 2}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddPort(&Port{ID: "B", Berths: 1}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddFleet(&Fleet{ID: "f1", Policy: "eager"}); err != nil {
		t.Fatal(err)
	}
	v := &Vessel{
		ID:       "v1",
		Fleet:    "f1",
		Capacity: capacity,
		Speed:    1,
		Position: Position{Kind: PositionBerthed, Port: "A"},
	}
	if err := r.AddVessel(v); err != nil {
		t.Fatal(err)
	}
	return r
}

func addTestCargo(t *testing.T, r *Registry, id CargoID, volume float64) {
	t.Helper()
	err := r.AddCargo(&Cargo{ID: id, Origin: "A", Destination: "B", Volume: volume})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_AddVessel_ClaimsBerthAtSetup(t *testing.T) {
	// GIVEN a registry with a berthed vessel at A
	r := testRegistry(t, 100)

	// THEN the setup berth is counted as occupied
	p, _ := r.Port("A")
	if p.Occupied != 1 {
		t.Errorf("port A occupied: got %d, want 1", p.Occupied)
	}
}

func TestRegistry_AddVessel_NoFreeBerth_Rejected(t *testing.T) {
	// GIVEN port B with a single berth already taken
	r := testRegistry(t, 100)
	v2 := &Vessel{ID: "v2", Fleet: "f1", Capacity: 10, Speed: 1,
		Position: Position{Kind: PositionBerthed, Port: "B"}}
	if err := r.AddVessel(v2); err != nil {
		t.Fatal(err)
	}

	// WHEN a second vessel tries to start at B
	v3 := &Vessel{ID: "v3", Fleet: "f1", Capacity: 10, Speed: 1,
		Position: Position{Kind: PositionBerthed, Port: "B"}}
	err := r.AddVessel(v3)

	// THEN setup fails with ErrCapacityExceeded
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestRegistry_AssignCargo_OverCapacity_RejectedWithoutStateChange(t *testing.T) {
	// GIVEN a vessel with capacity 100 already committed to 80
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 80)
	addTestCargo(t, r, "c2", 30)
	for _, id := range []CargoID{"c1", "c2"} {
		if err := r.OfferCargo(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AssignCargo("c1", "v1"); err != nil {
		t.Fatal(err)
	}

	// WHEN a second assignment would exceed capacity
	err := r.AssignCargo("c2", "v1")

	// THEN it fails with ErrCapacityExceeded and nothing changed
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
	c2, _ := r.Cargo("c2")
	if c2.Status != StatusOffered {
		t.Errorf("rejected cargo status: got %s, want %s", c2.Status, StatusOffered)
	}
	if c2.Vessel != "" {
		t.Errorf("rejected cargo vessel: got %s, want empty", c2.Vessel)
	}
	v, _ := r.Vessel("v1")
	if v.Committed != 80 {
		t.Errorf("committed after rejection: got %.1f, want 80", v.Committed)
	}
}

func TestRegistry_CargoLifecycle_ForwardOnly(t *testing.T) {
	// GIVEN a cargo walked through its full lifecycle
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 40)

	steps := []struct {
		name string
		op   func() error
		want CargoStatus
	}{
		{"offer", func() error { return r.OfferCargo("c1") }, StatusOffered},
		{"assign", func() error { return r.AssignCargo("c1", "v1") }, StatusAssigned},
		{"load", func() error { return r.LoadCargo("c1", "v1", 10) }, StatusLoaded},
	}
	for _, st := range steps {
		if err := st.op(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		c, _ := r.Cargo("c1")
		if c.Status != st.want {
			t.Fatalf("%s: status %s, want %s", st.name, c.Status, st.want)
		}
	}

	// WHEN a step is replayed out of order
	err := r.OfferCargo("c1")

	// THEN the transition is rejected
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-offer of loaded cargo: got %v, want ErrInvalidTransition", err)
	}
}

func TestRegistry_LoadCargo_RequiresBerthAtOrigin(t *testing.T) {
	// GIVEN an assigned cargo whose vessel is berthed at the wrong port
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 40)
	if err := r.OfferCargo("c1"); err != nil {
		t.Fatal(err)
	}
	if err := r.AssignCargo("c1", "v1"); err != nil {
		t.Fatal(err)
	}
	v, _ := r.Vessel("v1")
	v.Position = Position{Kind: PositionBerthed, Port: "B"}

	// WHEN loading is attempted away from the origin
	err := r.LoadCargo("c1", "v1", 5)

	// THEN it fails and the cargo stays assigned
	if err == nil {
		t.Fatal("loading away from origin succeeded, want error")
	}
	c, _ := r.Cargo("c1")
	if c.Status != StatusAssigned {
		t.Errorf("status after failed load: got %s, want %s", c.Status, StatusAssigned)
	}
}

func TestRegistry_UnloadCargo_DeliversAndReleasesCommitment(t *testing.T) {
	// GIVEN a loaded cargo with the vessel berthed at the destination
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 40)
	if err := r.OfferCargo("c1"); err != nil {
		t.Fatal(err)
	}
	if err := r.AssignCargo("c1", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadCargo("c1", "v1", 10); err != nil {
		t.Fatal(err)
	}
	v, _ := r.Vessel("v1")
	v.Position = Position{Kind: PositionBerthed, Port: "B"}

	// WHEN the cargo is unloaded
	if err := r.UnloadCargo("c1", "v1", 25); err != nil {
		t.Fatal(err)
	}

	// THEN it is delivered, off the manifest, and capacity is freed
	c, _ := r.Cargo("c1")
	if c.Status != StatusDelivered {
		t.Errorf("status: got %s, want %s", c.Status, StatusDelivered)
	}
	if c.DeliveredTime != 25 {
		t.Errorf("delivered time: got %d, want 25", c.DeliveredTime)
	}
	if len(v.Manifest) != 0 || v.ManifestVolume != 0 {
		t.Errorf("manifest not cleared: %v vol=%.1f", v.Manifest, v.ManifestVolume)
	}
	if v.Committed != 0 {
		t.Errorf("committed after delivery: got %.1f, want 0", v.Committed)
	}
}

func TestRegistry_ExpireCargo_ReleasesReservation(t *testing.T) {
	// GIVEN a cargo loaded aboard a vessel
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 40)
	if err := r.OfferCargo("c1"); err != nil {
		t.Fatal(err)
	}
	if err := r.AssignCargo("c1", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadCargo("c1", "v1", 10); err != nil {
		t.Fatal(err)
	}

	// WHEN the cargo is expired (end-of-run accounting)
	if err := r.ExpireCargo("c1"); err != nil {
		t.Fatal(err)
	}

	// THEN the manifest and commitment are released
	v, _ := r.Vessel("v1")
	if v.Committed != 0 || v.ManifestVolume != 0 {
		t.Errorf("reservation not released: committed=%.1f manifest=%.1f", v.Committed, v.ManifestVolume)
	}
	c, _ := r.Cargo("c1")
	if c.Status != StatusExpired {
		t.Errorf("status: got %s, want %s", c.Status, StatusExpired)
	}
}

func TestRegistry_ExpireCargo_Delivered_Rejected(t *testing.T) {
	// GIVEN a delivered cargo
	r := testRegistry(t, 100)
	addTestCargo(t, r, "c1", 40)
	for _, op := range []func() error{
		func() error { return r.OfferCargo("c1") },
		func() error { return r.AssignCargo("c1", "v1") },
		func() error { return r.LoadCargo("c1", "v1", 10) },
	} {
		if err := op(); err != nil {
			t.Fatal(err)
		}
	}
	v, _ := r.Vessel("v1")
	v.Position = Position{Kind: PositionBerthed, Port: "B"}
	if err := r.UnloadCargo("c1", "v1", 20); err != nil {
		t.Fatal(err)
	}

	// WHEN expiry is attempted on the terminal cargo
	err := r.ExpireCargo("c1")

	// THEN the terminal status is immutable
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestRegistry_BerthVessel_AtCapacity_Rejected(t *testing.T) {
	// GIVEN port B with its single berth taken
	r := testRegistry(t, 100)
	v2 := &Vessel{ID: "v2", Fleet: "f1", Capacity: 10, Speed: 1,
		Position: Position{Kind: PositionBerthed, Port: "B"}}
	if err := r.AddVessel(v2); err != nil {
		t.Fatal(err)
	}
	v, _ := r.Vessel("v1")
	v.Position = Position{Kind: PositionWaiting, Port: "B"}

	// WHEN another vessel tries to berth
	err := r.BerthVessel("v1", "B", 5)

	// THEN admission fails with ErrCapacityExceeded
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestRegistry_ReleaseBerth_HandsBerthToQueueHead(t *testing.T) {
	// GIVEN two vessels waiting off port A in arrival order
	r := testRegistry(t, 100)
	p, _ := r.Port("A")
	p.enqueueWaiting("w1")
	p.enqueueWaiting("w2")

	// WHEN the berthed vessel releases its berth
	next, granted, err := r.ReleaseBerth("v1", 10)
	if err != nil {
		t.Fatal(err)
	}

	// THEN the FIFO head is granted the berth
	if !granted || next != "w1" {
		t.Errorf("grant: got (%s, %v), want (w1, true)", next, granted)
	}
	if p.Occupied != 0 {
		t.Errorf("occupied after release: got %d, want 0", p.Occupied)
	}
	if len(p.Waiting) != 1 || p.Waiting[0] != "w2" {
		t.Errorf("waiting after grant: got %v, want [w2]", p.Waiting)
	}
}

func TestRegistry_Lookup_UnknownEntity(t *testing.T) {
	// GIVEN a populated registry
	r := testRegistry(t, 100)

	// WHEN unknown identities are looked up
	_, portErr := r.Port("nowhere")
	_, vesselErr := r.Vessel("ghost")
	_, cargoErr := r.Cargo("missing")
	_, fleetErr := r.Fleet("nobody")

	// THEN every lookup fails with ErrUnknownEntity
	for name, err := range map[string]error{
		"port": portErr, "vessel": vesselErr, "cargo": cargoErr, "fleet": fleetErr,
	} {
		if !errors.Is(err, ErrUnknownEntity) {
			t.Errorf("%s lookup: got %v, want ErrUnknownEntity", name, err)
		}
	}
}

func TestRegistry_AddCargo_UnknownPort_Rejected(t *testing.T) {
	// GIVEN a registry without port Z
	r := testRegistry(t, 100)

	// WHEN a cargo references it
	err := r.AddCargo(&Cargo{ID: "c1", Origin: "Z", Destination: "B", Volume: 10})

	// THEN registration fails with ErrUnknownEntity
	if !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("got %v, want ErrUnknownEntity", err)
	}
}

func TestPort_BusyTicks_IntegratesOccupancy(t *testing.T) {
	// GIVEN a port occupied by one vessel from t=0
	r := testRegistry(t, 100)

	// WHEN the berth is released at t=10 and reclaimed at t=15
	if _, _, err := r.ReleaseBerth("v1", 10); err != nil {
		t.Fatal(err)
	}
	v, _ := r.Vessel("v1")
	v.Position = Position{Kind: PositionWaiting, Port: "A"}
	if err := r.BerthVessel("v1", "A", 15); err != nil {
		t.Fatal(err)
	}

	// THEN busy ticks at t=20 cover [0,10) and [15,20)
	p, _ := r.Port("A")
	if got := p.BusyTicks(20); got != 15 {
		t.Errorf("busy ticks: got %d, want 15", got)
	}
}
