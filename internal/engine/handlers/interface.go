package handlers

import (
	"encoding/json"

	"frontier-server/internal/domain"
	"frontier-server/internal/sim"
)

// Context передает хендлеру состояние мира.
// Хендлеры исполняются только в потоке цикла симуляции, поэтому могут
// мутировать мир без синхронизации.
type Context struct {
	World  *sim.World
	Actor  *domain.Entity // Сущность, к которой применяется действие
	Player *domain.Player // Владелец действия (для приказов - отправитель)
}

// Result - результат выполнения команды.
// Хендлер не пишет в логи и не шлет сообщения сам, он возвращает данные.
type Result struct {
	Msg string // Текст для debug-лога, если есть что сказать
}

// HandlerFunc - контракт для любой команды (move, attack, follow, etc).
// Ошибка означает "действие отклонено": мир не изменен, цикл продолжает
// работу, ретраев нет.
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа.
func EmptyResult() Result {
	return Result{}
}
