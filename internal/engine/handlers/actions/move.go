package actions

import (
	"errors"

	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
	"frontier-server/pkg/api"
)

// HandleMove задает скорость по вектору намерения.
// Компоненты направления умножаются на MoveSpeed без нормализации -
// так вел себя исходный прототип, диагональ получается быстрее прямой.
// Позиция изменится на ближайшем тике, не здесь.
func HandleMove(ctx handlers.Context, p api.PlayerActionPayload) (handlers.Result, error) {
	if p.Direction == nil {
		return handlers.EmptyResult(), errors.New("move without direction")
	}

	vel := domain.Vec2{
		X: p.Direction.X * domain.MoveSpeed,
		Y: p.Direction.Y * domain.MoveSpeed,
	}
	if err := ctx.World.ApplyMovement(ctx.Actor.ID, vel); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.EmptyResult(), nil
}
