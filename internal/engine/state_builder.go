package engine

import (
	"frontier-server/internal/domain"
	"frontier-server/internal/sim"
	"frontier-server/pkg/api"
)

// EntityStateFrom переводит доменную сущность в проводной формат.
// Компоненты подтипов выкладываются плоско: клиенту не нужно знать
// про внутреннюю компонентную структуру.
func EntityStateFrom(e *domain.Entity) api.EntityState {
	s := api.EntityState{
		ID:     e.ID,
		X:      e.Pos.X,
		Y:      e.Pos.Y,
		VX:     e.Vel.X,
		VY:     e.Vel.Y,
		State:  string(e.State),
		Facing: string(e.Facing),
	}
	if e.Combat != nil {
		hp, maxHP, ap := e.Combat.HP, e.Combat.MaxHP, e.Combat.ActionPoints
		s.HP = &hp
		s.MaxHP = &maxHP
		s.ActionPoints = &ap
	}
	if e.Inventory != nil {
		s.Inventory = append([]string(nil), e.Inventory.Items...)
	}
	if e.Party != nil {
		s.AIMode = string(e.Party.Mode)
	}
	return s
}

// BuildInitialState собирает полный снимок мира.
// player == nil для снимка наблюдателя (без привязки к персонажу).
func BuildInitialState(w *sim.World, player *domain.Player) api.InitialState {
	entities := make(map[string]api.EntityState, w.Count())
	for id, e := range w.FullState() {
		entities[id] = EntityStateFrom(e)
	}

	state := api.InitialState{
		World:    api.WorldMeta{Width: w.Width(), Height: w.Height()},
		Entities: entities,
	}
	if player != nil {
		state.PlayerID = player.PlayerID
		state.ControlledEntityIDs = append([]string(nil), player.ControlledEntityIDs...)
	}
	return state
}

// BuildStateUpdate переводит дельту тика в проводной формат.
func BuildStateUpdate(delta *domain.DeltaSnapshot) api.StateUpdate {
	entities := make(map[string]api.EntityState, len(delta.Changed))
	for id, e := range delta.Changed {
		entities[id] = EntityStateFrom(e)
	}
	return api.StateUpdate{
		Tick:     delta.Tick,
		Entities: entities,
		Removed:  delta.Removed,
	}
}
