package domain

import "math"

// Vec2 - точка или вектор в координатах мира (игровые единицы, не тайлы).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add возвращает сумму векторов (Go передает структуры по значению,
// поэтому исходный вектор не меняется).
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Scale возвращает вектор, умноженный на скаляр.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Sub возвращает разность векторов.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Len возвращает длину вектора.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo возвращает точное расстояние до другой точки (float).
func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Sub(other).Len()
}

// IsZero возвращает true для нулевого вектора (сущность стоит).
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalized возвращает единичный вектор того же направления.
// Нулевой вектор остается нулевым.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}
