package domain

// EntityState - поведенческое состояние сущности.
// Передается клиенту как есть (выбор анимации - забота рендера).
type EntityState string

const (
	StateIdle      EntityState = "idle"
	StateMoving    EntityState = "moving"
	StateAttacking EntityState = "attacking"
	StateUsingItem EntityState = "using_item"
	StateFollowing EntityState = "following"
	StateSleeping  EntityState = "sleeping" // владелец отключился
)

// Facing - одно из четырех направлений взгляда.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// AIMode - режим поведения напарника (party member).
// Сами режимы пока заглушки: move_to едет по прямой, follow только
// помечает цель. Полноценный AI и pathfinding сюда не входят.
type AIMode string

const (
	AIModeFollow AIMode = "follow"
	AIModeHold   AIMode = "hold_position"
	AIModeAttack AIMode = "attack"
	AIModeMoveTo AIMode = "move_to"
)

// Игровые константы. Значения фиксированы конфигурацией кода,
// а не рантайм-настройками (менять их на лету незачем).
const (
	// MoveSpeed - скорость перемещения сущности, единиц в секунду.
	MoveSpeed = 50.0

	// Стоимость действий в очках действия (AP).
	CostAttack  = 20
	CostUseItem = 10

	// DefaultHP / DefaultActionPoints - стартовые ресурсы персонажа.
	DefaultHP           = 100
	DefaultActionPoints = 100

	// ActionPointsRegenRate - восстановление очков действия, единиц в секунду.
	// Целое очко начисляется раз в секунду, а не дробное каждый тик:
	// иначе любая сущность с потраченными AP попадала бы в каждую дельту.
	ActionPointsRegenRate = 1.0

	// MoveToArriveRadius - на каком расстоянии от цели move_to
	// считается выполненным.
	MoveToArriveRadius = 4.0
)

// FacingFromVelocity выводит направление взгляда из вектора скорости.
// Вертикальная ось проверяется первой, затем горизонтальная -
// порядок важен для диагоналей и закреплен тестами.
func FacingFromVelocity(v Vec2, current Facing) Facing {
	switch {
	case v.Y < 0:
		return FacingUp
	case v.Y > 0:
		return FacingDown
	case v.X < 0:
		return FacingLeft
	case v.X > 0:
		return FacingRight
	}
	return current
}
