package sim

import (
	"math"
	"testing"

	"frontier-server/internal/domain"
)

func newTestWorld() *World {
	return NewWorld(1000, 1000, 32)
}

func TestWorld_MovementIntegration(t *testing.T) {
	w := newTestWorld()
	e := domain.NewEntity("hero", domain.Vec2{X: 500, Y: 500})
	if err := w.AddEntity(e); err != nil {
		t.Fatal(err)
	}

	// Moving down at 50 u/s for one 100ms tick: y 500 -> 505.
	if err := w.ApplyMovement("hero", domain.Vec2{Y: 50}); err != nil {
		t.Fatal(err)
	}
	w.Tick(0.1)

	if math.Abs(e.Pos.Y-505) > 1e-9 {
		t.Errorf("Expected y=505, got %f", e.Pos.Y)
	}
	if e.Pos.X != 500 {
		t.Errorf("X must not change, got %f", e.Pos.X)
	}
	if e.State != domain.StateMoving {
		t.Errorf("Expected moving state, got %s", e.State)
	}
	if e.Facing != domain.FacingDown {
		t.Errorf("Expected facing down, got %s", e.Facing)
	}
}

func TestWorld_ClampsToBounds(t *testing.T) {
	w := newTestWorld()
	e := domain.NewEntity("runner", domain.Vec2{X: 999, Y: 1})
	if err := w.AddEntity(e); err != nil {
		t.Fatal(err)
	}

	w.ApplyMovement("runner", domain.Vec2{X: 50, Y: -50})
	for i := 0; i < 10; i++ {
		w.Tick(0.1)
	}

	if e.Pos.X != 1000 || e.Pos.Y != 0 {
		t.Errorf("Expected clamp to (1000,0), got (%f,%f)", e.Pos.X, e.Pos.Y)
	}
}

func TestWorld_DeltaContainsOnlyChanged(t *testing.T) {
	w := newTestWorld()
	mover := domain.NewEntity("mover", domain.Vec2{X: 100, Y: 100})
	idle := domain.NewEntity("idle", domain.Vec2{X: 200, Y: 200})
	w.AddEntity(mover)
	w.AddEntity(idle)

	// Spawn marks both dirty; flush that first delta.
	w.ComputeDelta()

	w.ApplyMovement("mover", domain.Vec2{X: 50})
	w.Tick(0.1)

	delta := w.ComputeDelta()
	if _, ok := delta.Changed["mover"]; !ok {
		t.Error("Moved entity missing from delta")
	}
	if _, ok := delta.Changed["idle"]; ok {
		t.Error("Idle entity must not appear in delta")
	}
	if len(delta.Removed) != 0 {
		t.Errorf("Unexpected removals: %v", delta.Removed)
	}
}

func TestWorld_ComputeDeltaIsIdempotent(t *testing.T) {
	w := newTestWorld()
	w.AddEntity(domain.NewEntity("e", domain.Vec2{X: 1, Y: 1}))

	first := w.ComputeDelta()
	if len(first.Changed) != 1 {
		t.Fatalf("Spawn must appear in first delta, got %d entries", len(first.Changed))
	}

	second := w.ComputeDelta()
	if !second.IsEmpty() {
		t.Errorf("Second delta without mutations must be empty, got %d changed, %d removed",
			len(second.Changed), len(second.Removed))
	}
}

func TestWorld_StoppingEntityAppearsInOneMoreDelta(t *testing.T) {
	w := newTestWorld()
	e := domain.NewEntity("e", domain.Vec2{X: 100, Y: 100})
	w.AddEntity(e)
	w.ComputeDelta()

	w.ApplyMovement("e", domain.Vec2{X: 50})
	w.Tick(0.1)
	w.ComputeDelta()

	// The stop itself (velocity change) must reach clients once.
	w.ApplyMovement("e", domain.Vec2{})
	w.Tick(0.1)

	delta := w.ComputeDelta()
	if _, ok := delta.Changed["e"]; !ok {
		t.Fatal("Stop must be broadcast")
	}
	if delta.Changed["e"].State != domain.StateIdle {
		t.Errorf("Expected idle in delta, got %s", delta.Changed["e"].State)
	}

	// After that the standing entity goes silent.
	w.Tick(0.1)
	if next := w.ComputeDelta(); !next.IsEmpty() {
		t.Errorf("Standing entity must not generate deltas, got %d changed", len(next.Changed))
	}
}

func TestWorld_RemovalReachesDelta(t *testing.T) {
	w := newTestWorld()
	w.AddEntity(domain.NewEntity("doomed", domain.Vec2{X: 5, Y: 5}))
	w.ComputeDelta()

	w.RemoveEntity("doomed")
	w.RemoveEntity("doomed") // second removal is a no-op

	delta := w.ComputeDelta()
	if len(delta.Removed) != 1 || delta.Removed[0] != "doomed" {
		t.Errorf("Expected removed=[doomed], got %v", delta.Removed)
	}
	if _, ok := delta.Changed["doomed"]; ok {
		t.Error("Removed entity must not be in changed set")
	}
	if w.Entity("doomed") != nil {
		t.Error("Entity still present after removal")
	}
	if w.Grid().Len() != 0 {
		t.Error("Entity still indexed after removal")
	}
}

func TestWorld_DeltaEntitiesAreClones(t *testing.T) {
	w := newTestWorld()
	e := domain.NewPlayerCharacter("pc", domain.Vec2{X: 10, Y: 10})
	w.AddEntity(e)

	delta := w.ComputeDelta()
	snapshot := delta.Changed["pc"]

	// Mutating the live entity must not leak into the already built delta.
	e.Pos.X = 999
	e.Combat.HP = 1

	if snapshot.Pos.X != 10 {
		t.Errorf("Delta snapshot shares position with live entity")
	}
	if snapshot.Combat.HP != domain.DefaultHP {
		t.Errorf("Delta snapshot shares combat component with live entity")
	}
}

func TestWorld_AddEntityRejectsDuplicateID(t *testing.T) {
	w := newTestWorld()
	if err := w.AddEntity(domain.NewEntity("dup", domain.Vec2{})); err != nil {
		t.Fatal(err)
	}
	if err := w.AddEntity(domain.NewEntity("dup", domain.Vec2{})); err == nil {
		t.Error("Duplicate ID must be rejected")
	}
}

func TestWorld_GridFollowsMovement(t *testing.T) {
	w := newTestWorld()
	e := domain.NewEntity("walker", domain.Vec2{X: 0, Y: 0})
	w.AddEntity(e)

	w.ApplyMovement("walker", domain.Vec2{X: 50})
	// 50 u/s, cell size 32: boundary is crossed within a second.
	for i := 0; i < 10; i++ {
		w.Tick(0.1)
	}

	cell, ok := w.Grid().CellOf("walker")
	if !ok {
		t.Fatal("Walker lost from grid")
	}
	if cell.Col != 1 {
		t.Errorf("Expected column 1 after walking 50 units, got %d", cell.Col)
	}
}

func TestWorld_MoveToSteeringArrives(t *testing.T) {
	w := newTestWorld()
	m := domain.NewPartyMember("companion", domain.Vec2{X: 100, Y: 100})
	w.AddEntity(m)

	dest := domain.Vec2{X: 160, Y: 100}
	m.Party.Mode = domain.AIModeMoveTo
	m.Party.Destination = &dest

	// 60 units at 50 u/s needs ~1.2s; give it 3s of ticks.
	for i := 0; i < 30; i++ {
		w.Tick(0.1)
	}

	if m.Party.Destination != nil {
		t.Error("Destination must be cleared on arrival")
	}
	if m.State != domain.StateIdle {
		t.Errorf("Expected idle on arrival, got %s", m.State)
	}
	if m.Pos.DistanceTo(dest) > domain.MoveToArriveRadius {
		t.Errorf("Stopped too far from destination: %v", m.Pos)
	}
}

func TestWorld_ActionPointRegenReachesDelta(t *testing.T) {
	w := newTestWorld()
	e := domain.NewPlayerCharacter("pc", domain.Vec2{X: 100, Y: 100})
	w.AddEntity(e)
	w.ComputeDelta()

	e.Combat.ActionPoints = 50

	// 900ms of ticks: no whole point yet, entity stays silent.
	for i := 0; i < 9; i++ {
		w.Tick(0.1)
	}
	if d := w.ComputeDelta(); !d.IsEmpty() {
		t.Fatalf("No point accrued yet, delta must be empty: %d changed", len(d.Changed))
	}

	// The tenth tick completes a second and must be broadcast.
	w.Tick(0.1)
	d := w.ComputeDelta()
	snap, ok := d.Changed["pc"]
	if !ok {
		t.Fatal("Regen tick missing from delta")
	}
	if snap.Combat.ActionPoints != 51 {
		t.Errorf("Expected 51 AP in delta, got %d", snap.Combat.ActionPoints)
	}

	// A full entity never shows up again.
	e.Combat.ActionPoints = e.Combat.MaxActionPoints
	w.ComputeDelta()
	for i := 0; i < 20; i++ {
		w.Tick(0.1)
	}
	if d := w.ComputeDelta(); !d.IsEmpty() {
		t.Errorf("Full entity must not generate regen deltas")
	}
}

func TestWorld_QueryRadiusIsExact(t *testing.T) {
	w := newTestWorld()
	w.AddEntity(domain.NewEntity("near", domain.Vec2{X: 500, Y: 500}))
	w.AddEntity(domain.NewEntity("edge", domain.Vec2{X: 590, Y: 500}))
	// Same cell range as the query rect but outside the circle.
	w.AddEntity(domain.NewEntity("corner", domain.Vec2{X: 590, Y: 590}))

	found := map[string]bool{}
	for _, e := range w.QueryRadius(domain.Vec2{X: 500, Y: 500}, 100) {
		found[e.ID] = true
	}

	if !found["near"] || !found["edge"] {
		t.Errorf("Entities inside radius missing: %v", found)
	}
	if found["corner"] {
		t.Error("Corner entity is outside the circle and must be filtered out")
	}
}
