package domain

import "testing"

func TestFacingFromVelocity(t *testing.T) {
	cases := []struct {
		name     string
		vel      Vec2
		current  Facing
		expected Facing
	}{
		{"up", Vec2{Y: -50}, FacingDown, FacingUp},
		{"down", Vec2{Y: 50}, FacingUp, FacingDown},
		{"left", Vec2{X: -50}, FacingDown, FacingLeft},
		{"right", Vec2{X: 50}, FacingDown, FacingRight},
		// Vertical axis wins on diagonals.
		{"diagonal up-right", Vec2{X: 50, Y: -50}, FacingDown, FacingUp},
		{"diagonal down-left", Vec2{X: -50, Y: 50}, FacingUp, FacingDown},
		// Zero velocity keeps the current facing.
		{"standing", Vec2{}, FacingLeft, FacingLeft},
	}

	for _, tc := range cases {
		if got := FacingFromVelocity(tc.vel, tc.current); got != tc.expected {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}

func TestEntity_SetVelocityUpdatesState(t *testing.T) {
	e := NewEntity("e", Vec2{})
	e.Dirty = false

	e.SetVelocity(Vec2{X: 50})
	if e.State != StateMoving || e.Facing != FacingRight || !e.Dirty {
		t.Errorf("Unexpected state after move: %s/%s dirty=%v", e.State, e.Facing, e.Dirty)
	}

	e.SetVelocity(Vec2{})
	if e.State != StateIdle {
		t.Errorf("Expected idle after stop, got %s", e.State)
	}
	if e.Facing != FacingRight {
		t.Errorf("Stop must keep last facing, got %s", e.Facing)
	}
}

func TestEntity_SpendActionPoints(t *testing.T) {
	e := NewPlayerCharacter("pc", Vec2{})

	if !e.SpendActionPoints(CostAttack) {
		t.Fatal("Spend within budget must succeed")
	}
	if e.Combat.ActionPoints != DefaultActionPoints-CostAttack {
		t.Errorf("Expected %d points, got %d", DefaultActionPoints-CostAttack, e.Combat.ActionPoints)
	}

	e.Combat.ActionPoints = CostAttack - 1
	if e.SpendActionPoints(CostAttack) {
		t.Error("Overdraft must be rejected")
	}
	if e.Combat.ActionPoints != CostAttack-1 {
		t.Error("Rejected spend must not change the balance")
	}

	// Entities without combat never spend.
	plain := NewEntity("rock", Vec2{})
	if plain.SpendActionPoints(1) {
		t.Error("Entity without combat component must not spend points")
	}
}

func TestEntity_RegenActionPoints(t *testing.T) {
	e := NewPlayerCharacter("pc", Vec2{})

	// Full entity never regens (and never looks changed).
	if e.RegenActionPoints(10) {
		t.Error("Full AP must not regen")
	}

	e.Combat.ActionPoints = 50

	// Whole points only: ten 100ms ticks accumulate into a single point.
	for i := 0; i < 9; i++ {
		if e.RegenActionPoints(0.1) {
			t.Fatalf("Point granted too early at tick %d", i)
		}
	}
	if !e.RegenActionPoints(0.1) {
		t.Fatal("Expected a point after a full second")
	}
	if e.Combat.ActionPoints != 51 {
		t.Errorf("Expected 51 AP, got %d", e.Combat.ActionPoints)
	}

	// Never above the cap.
	e.Combat.ActionPoints = e.Combat.MaxActionPoints - 1
	e.RegenActionPoints(5)
	if e.Combat.ActionPoints != e.Combat.MaxActionPoints {
		t.Errorf("Expected cap %d, got %d", e.Combat.MaxActionPoints, e.Combat.ActionPoints)
	}
}

func TestEntity_CloneIsDeep(t *testing.T) {
	e := NewPlayerCharacter("pc", Vec2{X: 1, Y: 2})
	e.Inventory.Items = []string{"torch"}
	dest := Vec2{X: 9, Y: 9}
	e.Party = &PartyComponent{Mode: AIModeMoveTo, Destination: &dest}

	c := e.Clone()

	e.Pos.X = 100
	e.Combat.HP = 1
	e.Inventory.Items[0] = "changed"
	e.Party.Destination.X = 0

	if c.Pos.X != 1 {
		t.Error("Clone shares position")
	}
	if c.Combat.HP != DefaultHP {
		t.Error("Clone shares combat component")
	}
	if c.Inventory.Items[0] != "torch" {
		t.Error("Clone shares inventory slice")
	}
	if c.Party.Destination.X != 9 {
		t.Error("Clone shares destination pointer")
	}
}

func TestParseActionAndCommand(t *testing.T) {
	if ParseAction("MOVE") != ActionMove {
		t.Error("Parsing must be case-insensitive")
	}
	if ParseAction("sleep") != ActionUnknown {
		t.Error("Internal sleep action must not be parseable from the wire")
	}
	if ParseAction("teleport") != ActionUnknown {
		t.Error("Unknown actions must map to ActionUnknown")
	}
	if ParseCommand("move_to") != CommandMoveTo {
		t.Error("move_to must parse")
	}
	if ParseCommand("") != CommandUnknown {
		t.Error("Empty command must be unknown")
	}
}
