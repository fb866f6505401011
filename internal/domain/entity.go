package domain

import "github.com/segmentio/ksuid"

// --- КОМПОНЕНТЫ ---

// CombatComponent - хиты и очки действия.
// Есть у персонажей игрока и напарников, у декоративных сущностей - nil.
type CombatComponent struct {
	HP              int `json:"hp"`
	MaxHP           int `json:"maxHp"`
	ActionPoints    int `json:"actionPoints"`
	MaxActionPoints int `json:"maxActionPoints"`
}

// InventoryComponent - предметы сущности.
// Пока это просто список идентификаторов: система предметов - заглушка.
type InventoryComponent struct {
	Items []string `json:"items"`
}

// PartyComponent - командное состояние напарника.
type PartyComponent struct {
	Mode           AIMode `json:"aiMode"`
	FollowTargetID string `json:"followTargetId,omitempty"`
	Destination    *Vec2  `json:"destination,omitempty"` // цель move_to
}

// --- СУЩНОСТЬ ---

// Entity - изменяемая запись об игровом объекте.
// ID неизменен и уникален в пределах мира на все время его жизни.
//
// Dirty взводится при любом наблюдаемом изменении и сбрасывается
// менеджером мира при сборке дельты. Гранулярность - вся сущность,
// а не отдельные поля: это осознанный размен трафика на простоту.
type Entity struct {
	ID     string      `json:"id"`
	Pos    Vec2        `json:"pos"`
	Vel    Vec2        `json:"vel"`
	State  EntityState `json:"state"`
	Facing Facing      `json:"facing"`

	Dirty bool `json:"-"`

	// Накопитель дробных очков действия между начислениями.
	// Не сериализуется: потеря остатка при сохранении несущественна.
	apAccum float64

	// Компоненты подтипов (nil - свойство отсутствует).
	Combat    *CombatComponent    `json:"combat,omitempty"`
	Inventory *InventoryComponent `json:"inventory,omitempty"`
	Party     *PartyComponent     `json:"party,omitempty"`
}

// NewEntityID создает уникальный идентификатор для спавна сущностей.
// KSUID сортируем по времени - удобно для логов и файлов сохранений.
func NewEntityID() string {
	return "entity_" + ksuid.New().String()
}

// NewEntity создает базовую сущность в указанной точке.
func NewEntity(id string, pos Vec2) *Entity {
	return &Entity{
		ID:     id,
		Pos:    pos,
		State:  StateIdle,
		Facing: FacingDown,
		Dirty:  true,
	}
}

// NewPlayerCharacter создает сущность персонажа игрока:
// базовый набор плюс бой и инвентарь.
func NewPlayerCharacter(id string, pos Vec2) *Entity {
	e := NewEntity(id, pos)
	e.Combat = &CombatComponent{
		HP:              DefaultHP,
		MaxHP:           DefaultHP,
		ActionPoints:    DefaultActionPoints,
		MaxActionPoints: DefaultActionPoints,
	}
	e.Inventory = &InventoryComponent{Items: []string{}}
	return e
}

// NewPartyMember создает сущность напарника: бой плюс командное состояние.
func NewPartyMember(id string, pos Vec2) *Entity {
	e := NewEntity(id, pos)
	e.Combat = &CombatComponent{
		HP:              DefaultHP,
		MaxHP:           DefaultHP,
		ActionPoints:    DefaultActionPoints,
		MaxActionPoints: DefaultActionPoints,
	}
	e.Party = &PartyComponent{Mode: AIModeFollow}
	return e
}

// SetVelocity задает скорость, обновляет состояние и направление взгляда.
// Сама позиция меняется только на тике (см. sim.World.Tick), чтобы все
// сущности двигались по согласованному снимку скоростей.
func (e *Entity) SetVelocity(v Vec2) {
	e.Vel = v
	if v.IsZero() {
		e.State = StateIdle
	} else {
		e.State = StateMoving
	}
	e.Facing = FacingFromVelocity(v, e.Facing)
	e.Dirty = true
}

// SpendActionPoints списывает очки действия.
// Возвращает false (и ничего не меняет), если очков не хватает.
func (e *Entity) SpendActionPoints(cost int) bool {
	if e.Combat == nil || e.Combat.ActionPoints < cost {
		return false
	}
	e.Combat.ActionPoints -= cost
	e.Dirty = true
	return true
}

// RegenActionPoints начисляет восстановленные очки действия за dt секунд.
// Возвращает true, только когда баланс реально изменился (начислено целое
// очко): вызывающий по этому признаку помечает сущность к рассылке.
func (e *Entity) RegenActionPoints(dt float64) bool {
	if e.Combat == nil || e.Combat.ActionPoints >= e.Combat.MaxActionPoints {
		e.apAccum = 0
		return false
	}
	// Эпсилон гасит ошибку суммирования тиков: десять раз по 0.1 секунды
	// в float64 дают чуть меньше единицы.
	const eps = 1e-9
	e.apAccum += dt * ActionPointsRegenRate
	if e.apAccum < 1-eps {
		return false
	}
	gained := int(e.apAccum + eps)
	e.apAccum -= float64(gained)
	if e.apAccum < 0 {
		e.apAccum = 0
	}
	e.Combat.ActionPoints += gained
	if e.Combat.ActionPoints > e.Combat.MaxActionPoints {
		e.Combat.ActionPoints = e.Combat.MaxActionPoints
	}
	return true
}

// HasItem проверяет наличие предмета в инвентаре.
func (e *Entity) HasItem(itemID string) bool {
	if e.Inventory == nil {
		return false
	}
	for _, it := range e.Inventory.Items {
		if it == itemID {
			return true
		}
	}
	return false
}

// Clone возвращает глубокую копию сущности.
// Используется при сборке дельты, чтобы рассылка работала со слепком,
// а не с живым объектом, который может измениться на следующем тике.
func (e *Entity) Clone() *Entity {
	c := *e
	if e.Combat != nil {
		cc := *e.Combat
		c.Combat = &cc
	}
	if e.Inventory != nil {
		items := make([]string, len(e.Inventory.Items))
		copy(items, e.Inventory.Items)
		c.Inventory = &InventoryComponent{Items: items}
	}
	if e.Party != nil {
		pc := *e.Party
		if e.Party.Destination != nil {
			d := *e.Party.Destination
			pc.Destination = &d
		}
		c.Party = &pc
	}
	return &c
}
