package actions

import (
	"fmt"

	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
	"frontier-server/pkg/api"
)

// HandleAttack - заглушка боевой системы: проверяет цель и очки действия,
// переводит сущность в состояние атаки. Расчет урона появится вместе
// с боевой системой.
func HandleAttack(ctx handlers.Context, p api.PlayerActionPayload) (handlers.Result, error) {
	target := ctx.World.Entity(p.TargetID)
	if target == nil {
		return handlers.EmptyResult(), fmt.Errorf("unknown attack target %s", p.TargetID)
	}

	if !ctx.Actor.SpendActionPoints(domain.CostAttack) {
		return handlers.EmptyResult(), fmt.Errorf("not enough action points for attack (need %d)", domain.CostAttack)
	}

	ctx.Actor.State = domain.StateAttacking
	ctx.Actor.Dirty = true
	ctx.World.MarkDirty(ctx.Actor.ID)

	return handlers.Result{Msg: fmt.Sprintf("%s attacks %s", ctx.Actor.ID, target.ID)}, nil
}
