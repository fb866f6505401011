package domain

import "encoding/json"

// PlayerAction - неизменяемое намерение игрока.
// Создается сетевым хендлером, потребляется циклом симуляции ровно один раз.
type PlayerAction struct {
	Action   ActionType      // Число! Быстро и безопасно.
	PlayerID string          // Чей это приказ
	Payload  json.RawMessage // Сырые данные (парсятся хендлером)
}

// PartyCommand - неизменяемый приказ напарнику.
type PartyCommand struct {
	Command  CommandType
	PlayerID string
	MemberID string          // Кому адресован приказ
	Payload  json.RawMessage
}
