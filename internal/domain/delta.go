package domain

// DeltaSnapshot - накопленные изменения мира с прошлой рассылки.
// Живет один тик: собирается, уходит в broadcast и выбрасывается.
// Changed содержит глубокие копии сущностей (см. Entity.Clone),
// поэтому отправку можно делать не оглядываясь на следующий тик.
type DeltaSnapshot struct {
	Tick    uint64
	Changed map[string]*Entity
	Removed []string
}

// IsEmpty возвращает true, если рассылать нечего.
func (d *DeltaSnapshot) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}
