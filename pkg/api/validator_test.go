package api

import (
	"math"
	"testing"
)

func TestPlayerActionPayload_Validate(t *testing.T) {
	valid := []PlayerActionPayload{
		{Type: "move", Direction: &Direction{X: 0, Y: 1}},
		{Type: "move", Direction: &Direction{X: -1, Y: -1}}, // diagonal intent is legal
		{Type: "attack", TargetID: "entity_1"},
		{Type: "use_item", ItemID: "bandage"},
	}
	for i, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("Case %d must pass: %v", i, err)
		}
	}

	invalid := []PlayerActionPayload{
		{},
		{Type: "move"},
		{Type: "attack"},
		{Type: "use_item"},
		{Type: "move", Direction: &Direction{X: 2, Y: 0}},
		{Type: "move", Direction: &Direction{X: math.NaN(), Y: 0}},
		{Type: "move", Direction: &Direction{X: math.Inf(1), Y: 0}},
	}
	for i, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("Case %d must fail: %+v", i, p)
		}
	}
}

func TestPartyCommandPayload_Validate(t *testing.T) {
	valid := []PartyCommandPayload{
		{Type: "follow", MemberID: "m1", TargetID: "e1"},
		{Type: "hold_position", MemberID: "m1"},
		{Type: "attack_target", MemberID: "m1", TargetID: "e1"},
		{Type: "move_to", MemberID: "m1", Target: &Target{X: 10, Y: 20}},
	}
	for i, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("Case %d must pass: %v", i, err)
		}
	}

	invalid := []PartyCommandPayload{
		{},
		{Type: "follow", MemberID: "m1"},
		{Type: "attack_target", MemberID: "m1"},
		{Type: "move_to", MemberID: "m1"},
		{Type: "follow", TargetID: "e1"}, // no member
	}
	for i, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("Case %d must fail: %+v", i, p)
		}
	}
}

func TestPlayerRef_Validate(t *testing.T) {
	if err := (PlayerRef{PlayerID: "p1"}).Validate(); err != nil {
		t.Errorf("Valid ref must pass: %v", err)
	}
	if err := (PlayerRef{}).Validate(); err == nil {
		t.Error("Empty player_id must fail")
	}
}
