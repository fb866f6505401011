package api

import "encoding/json"

// Типы сообщений сервер -> клиент.
const (
	MsgInitialState         = "initial_state"
	MsgStateUpdate          = "state_update"
	MsgPlayerList           = "player_list"
	MsgPlayerLoaded         = "player_loaded"
	MsgPlayerDeleted        = "player_deleted"
	MsgNewPlayerInitialized = "new_player_initialized"
	MsgError                = "error"
)

// Типы сообщений клиент -> сервер.
const (
	MsgRequestPlayerList = "request_player_list"
	MsgLoadPlayer        = "load_player"
	MsgNewPlayer         = "new_player"
	MsgDeletePlayer      = "delete_player"
	MsgPlayerAction      = "player_action"
	MsgPartyCommand      = "party_command"
)

// --- КОНВЕРТЫ ---

// ServerMessage - корневой объект любого сообщения сервера.
// Payload типизирован на стороне отправителя; клиент выбирает структуру
// для разбора по полю Type.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ClientMessage - корневой объект любого сообщения клиента.
// Payload разбирается хендлером конкретного типа.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// WorldMeta - размеры мира, чтобы клиент знал границы канвы.
type WorldMeta struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EntityState - полный набор наблюдаемых атрибутов одной сущности.
// Дельта шлет именно полный набор, а не пофайловый дифф: клиентский
// merge сводится к присваиванию по ключу.
type EntityState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	State  string  `json:"state"`
	Facing string  `json:"facing"`

	// Поля подтипов. Может отсутствовать любое - клиент обязан
	// быть к этому терпим.
	HP           *int     `json:"hp,omitempty"`
	MaxHP        *int     `json:"max_hp,omitempty"`
	ActionPoints *int     `json:"action_points,omitempty"`
	Inventory    []string `json:"inventory,omitempty"`
	AIMode       string   `json:"ai_mode,omitempty"`
}

// InitialState - полный самодостаточный снимок при подключении или
// загрузке игрока. Никогда не требует предыдущей дельты для интерпретации.
type InitialState struct {
	World    WorldMeta              `json:"world"`
	Entities map[string]EntityState `json:"entities"`

	// Заполнены только в player_loaded.
	PlayerID            string   `json:"player_id,omitempty"`
	ControlledEntityIDs []string `json:"controlled_entity_ids,omitempty"`
}

// StateUpdate - дельта одного тика.
type StateUpdate struct {
	Tick     uint64                 `json:"tick"`
	Entities map[string]EntityState `json:"entities"`
	Removed  []string               `json:"removed,omitempty"`
}

// PlayerSummary - строка списка игроков.
type PlayerSummary struct {
	PlayerID            string   `json:"player_id"`
	ControlledEntityIDs []string `json:"controlled_entity_ids"`
}

// PlayerList - ответ на request_player_list.
type PlayerList struct {
	Players []PlayerSummary `json:"players"`
}

// PlayerDeleted - подтверждение удаления.
type PlayerDeleted struct {
	PlayerID string `json:"player_id"`
}

// NewPlayerInitialized - подтверждение создания нового игрока.
type NewPlayerInitialized struct {
	PlayerID            string   `json:"player_id"`
	ControlledEntityIDs []string `json:"controlled_entity_ids"`
}

// ErrorMessage - канал ошибок для отклоненных запросов.
// Уходит только автору запроса, остальных клиентов не касается.
type ErrorMessage struct {
	Message string `json:"message"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// PlayerRef используется для load_player / new_player / delete_player.
type PlayerRef struct {
	PlayerID string `json:"player_id"`
}

// Direction - единичный (или нулевой) вектор намерения движения.
type Direction struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerActionPayload - действие игрока: тип плюс параметры.
// Какие параметры обязательны - зависит от типа (см. Validate).
type PlayerActionPayload struct {
	Type      string     `json:"type"`
	Direction *Direction `json:"direction,omitempty"` // move
	TargetID  string     `json:"target_id,omitempty"` // attack
	ItemID    string     `json:"item_id,omitempty"`   // use_item
}

// PartyCommandPayload - приказ напарнику.
type PartyCommandPayload struct {
	MemberID string  `json:"member_id"`
	Type     string  `json:"type"`
	TargetID string  `json:"target_id,omitempty"` // follow, attack_target
	Target   *Target `json:"target,omitempty"`    // move_to
}

// Target - точка на карте.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
