package actions

import (
	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
)

// HandleSleep усыпляет все сущности игрока при разрыве соединения.
// Действие служебное: ставится в очередь обработчиком дисконнекта и
// исполняется циклом как обычное - прямых мутаций из сетевого контекста
// здесь нет.
func HandleSleep(ctx handlers.Context) (handlers.Result, error) {
	for _, id := range ctx.Player.ControlledEntityIDs {
		e := ctx.World.Entity(id)
		if e == nil {
			continue
		}
		e.Vel = domain.Vec2{}
		e.State = domain.StateSleeping
		e.Dirty = true
		ctx.World.MarkDirty(id)
	}
	return handlers.EmptyResult(), nil
}
