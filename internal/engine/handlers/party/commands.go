// Package party содержит хендлеры приказов напарникам.
// Режимы поведения здесь - осознанные заглушки на месте будущего AI:
// приказ меняет командное состояние, но умной логики (преследование,
// pathfinding, бой) за ним пока нет.
package party

import (
	"fmt"

	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
	"frontier-server/pkg/api"
)

// HandleFollow переводит напарника в режим следования за целью.
func HandleFollow(ctx handlers.Context, p api.PartyCommandPayload) (handlers.Result, error) {
	if ctx.World.Entity(p.TargetID) == nil {
		return handlers.EmptyResult(), fmt.Errorf("follow target %s does not exist", p.TargetID)
	}

	ctx.Actor.Party.Mode = domain.AIModeFollow
	ctx.Actor.Party.FollowTargetID = p.TargetID
	ctx.Actor.Party.Destination = nil
	ctx.Actor.State = domain.StateFollowing
	ctx.Actor.Dirty = true
	ctx.World.MarkDirty(ctx.Actor.ID)
	return handlers.EmptyResult(), nil
}

// HandleHoldPosition останавливает напарника на месте.
func HandleHoldPosition(ctx handlers.Context, _ api.PartyCommandPayload) (handlers.Result, error) {
	ctx.Actor.Party.Mode = domain.AIModeHold
	ctx.Actor.Party.FollowTargetID = ""
	ctx.Actor.Party.Destination = nil
	if err := ctx.World.ApplyMovement(ctx.Actor.ID, domain.Vec2{}); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.EmptyResult(), nil
}

// HandleAttackTarget переводит напарника в режим атаки цели.
func HandleAttackTarget(ctx handlers.Context, p api.PartyCommandPayload) (handlers.Result, error) {
	if ctx.World.Entity(p.TargetID) == nil {
		return handlers.EmptyResult(), fmt.Errorf("attack target %s does not exist", p.TargetID)
	}

	ctx.Actor.Party.Mode = domain.AIModeAttack
	ctx.Actor.Party.FollowTargetID = p.TargetID
	ctx.Actor.Party.Destination = nil
	ctx.Actor.State = domain.StateAttacking
	ctx.Actor.Dirty = true
	ctx.World.MarkDirty(ctx.Actor.ID)
	return handlers.EmptyResult(), nil
}

// HandleMoveTo отправляет напарника в точку по прямой.
// Рулежку и остановку по прибытии делает World на тике.
func HandleMoveTo(ctx handlers.Context, p api.PartyCommandPayload) (handlers.Result, error) {
	dest := domain.Vec2{X: p.Target.X, Y: p.Target.Y}

	ctx.Actor.Party.Mode = domain.AIModeMoveTo
	ctx.Actor.Party.FollowTargetID = ""
	ctx.Actor.Party.Destination = &dest
	ctx.Actor.State = domain.StateMoving
	ctx.Actor.Dirty = true
	ctx.World.MarkDirty(ctx.Actor.ID)
	return handlers.EmptyResult(), nil
}
