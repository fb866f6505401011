// Package interp - клиентское сглаживание позиций между обновлениями
// сервера. Сервер тикает редко (например, 10 Гц), клиент рисует часто;
// экспоненциальное приближение прячет ступеньки, не накапливая ошибку.
//
// Пакет живет в pkg/, потому что используется и внешними клиентами,
// и нашим headless-ботом (cmd/bot).
package interp

import "frontier-server/pkg/api"

// Point - позиция на экране клиента.
type Point struct {
	X float64
	Y float64
}

type track struct {
	display Point
	target  Point
}

// Interpolator ведет две позиции на сущность: авторитетную (последняя
// с сервера) и отображаемую. Step подтягивает вторую к первой.
type Interpolator struct {
	rate   float64
	tracks map[string]*track
}

// New создает интерполятор с коэффициентом подтягивания rate (1/сек).
// Чем выше rate, тем резче клиент реагирует на обновления.
func New(rate float64) *Interpolator {
	return &Interpolator{
		rate:   rate,
		tracks: make(map[string]*track),
	}
}

// ApplySnapshot полностью замещает состояние полным снимком сервера.
// Отображаемые позиции ставятся на авторитетные без сглаживания.
func (it *Interpolator) ApplySnapshot(entities map[string]api.EntityState) {
	it.tracks = make(map[string]*track, len(entities))
	for id, e := range entities {
		p := Point{X: e.X, Y: e.Y}
		it.tracks[id] = &track{display: p, target: p}
	}
}

// ApplyUpdate вливает дельту тика. Новая сущность появляется сразу
// на авторитетной позиции - никакого "подъезда" из старого места.
func (it *Interpolator) ApplyUpdate(update api.StateUpdate) {
	for id, e := range update.Entities {
		target := Point{X: e.X, Y: e.Y}
		if t, ok := it.tracks[id]; ok {
			t.target = target
		} else {
			it.tracks[id] = &track{display: target, target: target}
		}
	}
	for _, id := range update.Removed {
		delete(it.tracks, id)
	}
}

// Step продвигает отображаемые позиции на dt секунд:
//
//	display += (target - display) * min(1, rate*dt)
//
// Фактор ограничен единицей: при большом dt позиция встает точно
// на цель, но никогда не перелетает ее.
func (it *Interpolator) Step(dt float64) {
	factor := it.rate * dt
	if factor > 1 {
		factor = 1
	}
	if factor <= 0 {
		return
	}
	for _, t := range it.tracks {
		t.display.X += (t.target.X - t.display.X) * factor
		t.display.Y += (t.target.Y - t.display.Y) * factor
	}
}

// Display возвращает отображаемую позицию сущности.
func (it *Interpolator) Display(id string) (Point, bool) {
	t, ok := it.tracks[id]
	if !ok {
		return Point{}, false
	}
	return t.display, true
}

// Target возвращает последнюю авторитетную позицию сущности.
func (it *Interpolator) Target(id string) (Point, bool) {
	t, ok := it.tracks[id]
	if !ok {
		return Point{}, false
	}
	return t.target, true
}

// Len возвращает число отслеживаемых сущностей.
func (it *Interpolator) Len() int {
	return len(it.tracks)
}
