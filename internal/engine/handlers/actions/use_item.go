package actions

import (
	"fmt"

	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
	"frontier-server/pkg/api"
)

// HandleUseItem - заглушка системы предметов: предмет должен лежать
// в инвентаре, использование стоит очки действия.
func HandleUseItem(ctx handlers.Context, p api.PlayerActionPayload) (handlers.Result, error) {
	if !ctx.Actor.HasItem(p.ItemID) {
		return handlers.EmptyResult(), fmt.Errorf("item %s is not in inventory", p.ItemID)
	}

	if !ctx.Actor.SpendActionPoints(domain.CostUseItem) {
		return handlers.EmptyResult(), fmt.Errorf("not enough action points to use item (need %d)", domain.CostUseItem)
	}

	ctx.Actor.State = domain.StateUsingItem
	ctx.Actor.Dirty = true
	ctx.World.MarkDirty(ctx.Actor.ID)

	return handlers.EmptyResult(), nil
}
