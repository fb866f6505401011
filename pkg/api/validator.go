package api

import (
	"errors"
	"fmt"
	"math"
)

// Validator - интерфейс, который могут реализовать DTO.
// Хендлеры зовут Validate автоматически после разбора JSON.
type Validator interface {
	Validate() error
}

func (p PlayerRef) Validate() error {
	if p.PlayerID == "" {
		return errors.New("player_id is required")
	}
	return nil
}

func (p PlayerActionPayload) Validate() error {
	switch p.Type {
	case "move":
		if p.Direction == nil {
			return errors.New("move requires a direction")
		}
		return p.Direction.Validate()
	case "attack":
		if p.TargetID == "" {
			return errors.New("attack requires target_id")
		}
	case "use_item":
		if p.ItemID == "" {
			return errors.New("use_item requires item_id")
		}
	case "":
		return errors.New("action type is required")
	}
	return nil
}

func (d Direction) Validate() error {
	if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsInf(d.X, 0) || math.IsInf(d.Y, 0) {
		return errors.New("direction components must be finite")
	}
	// Направление - это намерение, не скорость: компоненты ограничены единицей.
	if math.Abs(d.X) > 1 || math.Abs(d.Y) > 1 {
		return fmt.Errorf("direction out of range: (%f, %f)", d.X, d.Y)
	}
	return nil
}

func (p PartyCommandPayload) Validate() error {
	if p.MemberID == "" {
		return errors.New("member_id is required")
	}
	switch p.Type {
	case "follow", "attack_target":
		if p.TargetID == "" {
			return fmt.Errorf("%s requires target_id", p.Type)
		}
	case "move_to":
		if p.Target == nil {
			return errors.New("move_to requires a target point")
		}
	case "hold_position":
	case "":
		return errors.New("command type is required")
	}
	return nil
}
