package sim

import "sync"

// Queue - потокобезопасная FIFO-очередь, развязывающая сетевые горутины
// и цикл симуляции. Много конкурентных продюсеров, один потребитель.
//
// Enqueue никогда не блокирует и ничего не отбрасывает: ограничения размера
// нет. При стабильно медленных тиках очередь может расти неограниченно -
// это осознанный риск текущего дизайна, а не недосмотр (бэкпрешер - тема
// для отдельного ужесточения).
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewQueue создает пустую очередь.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue добавляет элемент в хвост.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// DrainAll атомарно забирает все содержимое очереди в FIFO-порядке.
// Элементы, добавленные конкурентно во время дренажа, попадут в следующий
// вызов - граница тика четкая.
func (q *Queue[T]) DrainAll() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Len возвращает текущую длину (для диагностики).
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
