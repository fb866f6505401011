package sim

import (
	"math"

	"frontier-server/internal/domain"
)

// Cell - координаты ячейки пространственной сетки.
type Cell struct {
	Col int
	Row int
}

// SpatialGrid - сеточный индекс позиций сущностей для быстрых запросов
// близости. Ячейка - это корзина с ID сущностей; принадлежность ячейке -
// верхняя оценка, точную проверку расстояния делает вызывающий.
//
// Инвариант: сущность находится ровно в одной ячейке, соответствующей
// ее текущей позиции (owners - обратный индекс для этого).
type SpatialGrid struct {
	cellSize float64
	cells    map[Cell]map[string]struct{}
	owners   map[string]Cell
}

// NewSpatialGrid создает пустой индекс.
// Размер ячейки - фиксированная константа конфигурации, подобранная под
// ожидаемую плотность сущностей; на лету не меняется.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[Cell]map[string]struct{}),
		owners:   make(map[string]Cell),
	}
}

func (g *SpatialGrid) cellAt(x, y float64) Cell {
	return Cell{
		Col: int(math.Floor(x / g.cellSize)),
		Row: int(math.Floor(y / g.cellSize)),
	}
}

// Insert помещает сущность в ячейку, вычисленную из позиции.
// Повторная вставка того же ID просто переносит его (дубликатов не бывает).
func (g *SpatialGrid) Insert(entityID string, pos domain.Vec2) {
	if _, ok := g.owners[entityID]; ok {
		g.Remove(entityID)
	}
	cell := g.cellAt(pos.X, pos.Y)
	bucket, ok := g.cells[cell]
	if !ok {
		bucket = make(map[string]struct{})
		g.cells[cell] = bucket
	}
	bucket[entityID] = struct{}{}
	g.owners[entityID] = cell
}

// Remove убирает сущность из индекса.
// Вызывающему не нужно знать последнюю ячейку - ее помнит обратный индекс.
func (g *SpatialGrid) Remove(entityID string) {
	cell, ok := g.owners[entityID]
	if !ok {
		return
	}
	if bucket, ok := g.cells[cell]; ok {
		delete(bucket, entityID)
		if len(bucket) == 0 {
			delete(g.cells, cell)
		}
	}
	delete(g.owners, entityID)
}

// Update переносит сущность в ячейку новой позиции.
// Если ячейка не изменилась (обычный случай: сущность не пересекла границу),
// это O(1) no-op без перетряхивания корзин.
func (g *SpatialGrid) Update(entityID string, pos domain.Vec2) {
	newCell := g.cellAt(pos.X, pos.Y)
	oldCell, known := g.owners[entityID]
	if known && oldCell == newCell {
		return
	}
	g.Remove(entityID)

	bucket, ok := g.cells[newCell]
	if !ok {
		bucket = make(map[string]struct{})
		g.cells[newCell] = bucket
	}
	bucket[entityID] = struct{}{}
	g.owners[entityID] = newCell
}

// QueryRect возвращает ID-кандидаты из всех ячеек, пересекающих прямоугольник.
// Пустой регион - пустой результат, никогда не ошибка.
func (g *SpatialGrid) QueryRect(x, y, width, height float64) []string {
	minCell := g.cellAt(x, y)
	maxCell := g.cellAt(x+width, y+height)

	var result []string
	for col := minCell.Col; col <= maxCell.Col; col++ {
		for row := minCell.Row; row <= maxCell.Row; row++ {
			for id := range g.cells[Cell{Col: col, Row: row}] {
				result = append(result, id)
			}
		}
	}
	return result
}

// QueryRadius возвращает кандидатов в радиусе от центра.
// Реализация через ограничивающий прямоугольник: точная проверка
// расстояния остается за вызывающим.
func (g *SpatialGrid) QueryRadius(center domain.Vec2, radius float64) []string {
	return g.QueryRect(center.X-radius, center.Y-radius, radius*2, radius*2)
}

// CellOf возвращает текущую ячейку сущности (для проверок консистентности).
func (g *SpatialGrid) CellOf(entityID string) (Cell, bool) {
	cell, ok := g.owners[entityID]
	return cell, ok
}

// CellPopulation возвращает число сущностей в ячейке данной позиции.
func (g *SpatialGrid) CellPopulation(pos domain.Vec2) int {
	return len(g.cells[g.cellAt(pos.X, pos.Y)])
}

// Len возвращает общее число проиндексированных сущностей.
func (g *SpatialGrid) Len() int {
	return len(g.owners)
}
