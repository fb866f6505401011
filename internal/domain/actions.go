package domain

import "strings"

// ActionType - внутренний числовой идентификатор действия игрока.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionMove
	ActionAttack
	ActionUseItem

	// ActionSleep - служебное действие: транспорт разорвал соединение,
	// сущности игрока нужно усыпить. Снаружи не принимается.
	ActionSleep
)

var actionStringToType = map[string]ActionType{
	"move":     ActionMove,
	"attack":   ActionAttack,
	"use_item": ActionUseItem,
}

var actionTypeToString = map[ActionType]string{
	ActionMove:    "move",
	ActionAttack:  "attack",
	ActionUseItem: "use_item",
	ActionSleep:   "sleep",
}

// ParseAction конвертирует строку из JSON в ActionType.
// Служебные типы (sleep) снаружи не парсятся.
func ParseAction(s string) ActionType {
	if val, ok := actionStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для логов).
func (a ActionType) String() string {
	if val, ok := actionTypeToString[a]; ok {
		return val
	}
	return "unknown"
}

// CommandType - внутренний числовой идентификатор командного приказа напарнику.
type CommandType uint8

const (
	CommandUnknown CommandType = iota
	CommandFollow
	CommandHoldPosition
	CommandAttackTarget
	CommandMoveTo
)

var commandStringToType = map[string]CommandType{
	"follow":        CommandFollow,
	"hold_position": CommandHoldPosition,
	"attack_target": CommandAttackTarget,
	"move_to":       CommandMoveTo,
}

var commandTypeToString = map[CommandType]string{
	CommandFollow:       "follow",
	CommandHoldPosition: "hold_position",
	CommandAttackTarget: "attack_target",
	CommandMoveTo:       "move_to",
}

// ParseCommand конвертирует строку из JSON в CommandType.
func ParseCommand(s string) CommandType {
	if val, ok := commandStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return CommandUnknown
}

func (c CommandType) String() string {
	if val, ok := commandTypeToString[c]; ok {
		return val
	}
	return "unknown"
}
