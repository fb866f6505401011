package domain

// Player - персистентная личность игрока, в отличие от Entity переживающая
// сессию. Связывает идентификатор игрока со списком подконтрольных сущностей.
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`

	// Привязка к сохранению: мир и текущая область.
	WorldID string `json:"world_id"`
	AreaID  string `json:"area_id"`

	ControlledEntityIDs []string `json:"controlled_entity_ids"`
}

// ActiveEntityID возвращает сущность, к которой применяются действия игрока.
// Сейчас это всегда первая подконтрольная (переключение активного персонажа
// в протоколе пока не предусмотрено).
func (p *Player) ActiveEntityID() string {
	if len(p.ControlledEntityIDs) == 0 {
		return ""
	}
	return p.ControlledEntityIDs[0]
}

// Controls проверяет, управляет ли игрок данной сущностью.
func (p *Player) Controls(entityID string) bool {
	for _, id := range p.ControlledEntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}
