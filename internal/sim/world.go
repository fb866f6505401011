package sim

import (
	"fmt"

	"frontier-server/internal/domain"
)

// World - менеджер состояния мира: единственный мутатор таблицы сущностей
// и источник правды для рассылки. Владеет им исключительно поток цикла
// симуляции; весь внешний доступ идет через очереди команд.
type World struct {
	width  float64
	height float64

	entities map[string]*domain.Entity
	grid     *SpatialGrid

	// Дельта-учет: какие сущности изменились и кого удалили
	// с момента прошлого ComputeDelta.
	dirty   map[string]struct{}
	removed []string
}

// NewWorld создает пустой мир заданных размеров.
func NewWorld(width, height, cellSize float64) *World {
	return &World{
		width:    width,
		height:   height,
		entities: make(map[string]*domain.Entity),
		grid:     NewSpatialGrid(cellSize),
		dirty:    make(map[string]struct{}),
	}
}

// Width / Height - размеры мира (нужны клиенту в initial_state).
func (w *World) Width() float64  { return w.width }
func (w *World) Height() float64 { return w.height }

// AddEntity регистрирует готовую сущность: таблица, индекс, пометка dirty.
// Возвращает ошибку при коллизии ID - идентификаторы уникальны на все
// время жизни мира.
func (w *World) AddEntity(e *domain.Entity) error {
	if _, exists := w.entities[e.ID]; exists {
		return fmt.Errorf("entity %s already exists", e.ID)
	}
	w.entities[e.ID] = e
	w.grid.Insert(e.ID, e.Pos)
	w.dirty[e.ID] = struct{}{}
	return nil
}

// Entity возвращает сущность по ID (nil, если нет).
func (w *World) Entity(id string) *domain.Entity {
	return w.entities[id]
}

// Count возвращает число сущностей в мире.
func (w *World) Count() int {
	return len(w.entities)
}

// ForEachEntity обходит все сущности (порядок не определен).
func (w *World) ForEachEntity(callback func(*domain.Entity)) {
	for _, e := range w.entities {
		callback(e)
	}
}

// MarkDirty помечает сущность к следующей рассылке.
// Хендлеры зовут это после любой мутации, не проходящей через SetVelocity.
func (w *World) MarkDirty(id string) {
	if _, ok := w.entities[id]; ok {
		w.dirty[id] = struct{}{}
	}
}

// ApplyMovement задает скорость сущности. Интеграция позиции произойдет
// на ближайшем тике, чтобы все сущности двигались по единому снимку
// скоростей, а не по порядку обработки действий.
func (w *World) ApplyMovement(id string, velocity domain.Vec2) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("entity %s not found", id)
	}
	e.SetVelocity(velocity)
	w.dirty[id] = struct{}{}
	return nil
}

// RemoveEntity удаляет сущность из таблицы и индекса.
// Удаление попадает в ближайшую дельту через список removed.
func (w *World) RemoveEntity(id string) {
	if _, ok := w.entities[id]; !ok {
		return
	}
	delete(w.entities, id)
	w.grid.Remove(id)
	delete(w.dirty, id)
	w.removed = append(w.removed, id)
}

// Tick продвигает симуляцию на deltaTime секунд: рулежка напарников,
// восстановление очков действия, интеграция позиций, обновление индекса,
// пометка изменившихся.
func (w *World) Tick(deltaTime float64) {
	for id, e := range w.entities {
		w.steerPartyMember(e)

		if e.RegenActionPoints(deltaTime) {
			w.dirty[id] = struct{}{}
		}

		if e.Vel.IsZero() {
			if e.Dirty {
				w.dirty[id] = struct{}{}
				e.Dirty = false
			}
			continue
		}

		e.Pos = e.Pos.Add(e.Vel.Scale(deltaTime))
		w.clampToBounds(e)
		w.grid.Update(id, e.Pos)
		w.dirty[id] = struct{}{}
		e.Dirty = false
	}
}

// steerPartyMember - примитивное исполнение move_to: прямая к цели,
// остановка по прибытии. Это заглушка на месте будущего AI напарников,
// pathfinding сюда сознательно не входит.
func (w *World) steerPartyMember(e *domain.Entity) {
	if e.Party == nil || e.Party.Mode != domain.AIModeMoveTo || e.Party.Destination == nil {
		return
	}
	dest := *e.Party.Destination
	if e.Pos.DistanceTo(dest) <= domain.MoveToArriveRadius {
		e.Party.Destination = nil
		e.SetVelocity(domain.Vec2{})
		return
	}
	e.SetVelocity(dest.Sub(e.Pos).Normalized().Scale(domain.MoveSpeed))
}

// clampToBounds не выпускает сущность за границы мира.
func (w *World) clampToBounds(e *domain.Entity) {
	if e.Pos.X < 0 {
		e.Pos.X = 0
	}
	if e.Pos.Y < 0 {
		e.Pos.Y = 0
	}
	if e.Pos.X > w.width {
		e.Pos.X = w.width
	}
	if e.Pos.Y > w.height {
		e.Pos.Y = w.height
	}
}

// ComputeDelta собирает изменения с прошлого вызова и сбрасывает учет.
// Повторный вызов без промежуточного Tick (или иных мутаций) дает пустую
// дельту - на этом держится минимизация трафика.
func (w *World) ComputeDelta() *domain.DeltaSnapshot {
	delta := &domain.DeltaSnapshot{
		Changed: make(map[string]*domain.Entity, len(w.dirty)),
		Removed: w.removed,
	}

	for id := range w.dirty {
		if e, ok := w.entities[id]; ok {
			delta.Changed[id] = e.Clone()
		}
	}

	w.dirty = make(map[string]struct{})
	w.removed = nil
	return delta
}

// QueryRadius возвращает сущности не дальше radius от центра.
// Сетка дает кандидатов, точную проверку расстояния делаем здесь.
func (w *World) QueryRadius(center domain.Vec2, radius float64) []*domain.Entity {
	var result []*domain.Entity
	for _, id := range w.grid.QueryRadius(center, radius) {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		if e.Pos.DistanceTo(center) <= radius {
			result = append(result, e)
		}
	}
	return result
}

// Grid открывает индекс для диагностики и тестов консистентности.
func (w *World) Grid() *SpatialGrid {
	return w.grid
}

// Snapshot возвращает глубокие копии всех сущностей - точка входа
// для персистентности (см. storage).
func (w *World) Snapshot() []*domain.Entity {
	snapshot := make([]*domain.Entity, 0, len(w.entities))
	for _, e := range w.entities {
		snapshot = append(snapshot, e.Clone())
	}
	return snapshot
}

// FullState - как Snapshot, но в виде map для полного снимка клиенту.
func (w *World) FullState() map[string]*domain.Entity {
	state := make(map[string]*domain.Entity, len(w.entities))
	for id, e := range w.entities {
		state[id] = e.Clone()
	}
	return state
}
