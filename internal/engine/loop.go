package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"frontier-server/internal/domain"
	"frontier-server/internal/sim"
	"frontier-server/pkg/logger"
)

// LoopState - состояние планировщика симуляции.
// Машина состояний: Stopped -> Running <-> Paused -> Stopped.
type LoopState int32

const (
	LoopStopped LoopState = iota
	LoopRunning
	LoopPaused
)

func (s LoopState) String() string {
	switch s {
	case LoopStopped:
		return "stopped"
	case LoopRunning:
		return "running"
	case LoopPaused:
		return "paused"
	}
	return "unknown"
}

type ctrlKind int

const (
	ctrlPause ctrlKind = iota
	ctrlResume
	ctrlStop
)

// LoopDeps - все, что нужно циклу от внешнего мира.
// Колбеки исполняются в горутине цикла; applyAction/applyCommand обязаны
// сами переживать ошибки и паники отдельных элементов.
type LoopDeps struct {
	World        *sim.World
	Actions      *sim.Queue[domain.PlayerAction]
	Commands     *sim.Queue[domain.PartyCommand]
	ApplyAction  func(domain.PlayerAction)
	ApplyCommand func(domain.PartyCommand)
	DrainSession func()
	Broadcast    func(*domain.DeltaSnapshot)
}

// Loop - драйвер фиксированного шага: единственный поток, которому
// позволено мутировать мир. Тикает с целевой частотой; если тик не
// уложился в интервал, следующий начинается немедленно, без попыток
// "догнать" пропущенное - осознанная политика против каскадного лага.
type Loop struct {
	interval time.Duration
	deps     LoopDeps

	mu    sync.Mutex
	state LoopState
	ctrl  chan ctrlKind
	done  chan struct{}

	tick uint64 // читается атомарно из debug-эндпоинтов
}

// NewLoop создает остановленный цикл с заданной частотой тиков.
func NewLoop(tickRate int, deps LoopDeps) *Loop {
	return &Loop{
		interval: time.Second / time.Duration(tickRate),
		deps:     deps,
		state:    LoopStopped,
	}
}

// State возвращает текущее состояние машины.
func (l *Loop) State() LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Tick возвращает номер текущего тика.
func (l *Loop) Tick() uint64 {
	return atomic.LoadUint64(&l.tick)
}

// Interval возвращает целевую длительность тика.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Start запускает цикл: Stopped -> Running.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LoopStopped {
		return fmt.Errorf("cannot start loop from state %s", l.state)
	}
	l.state = LoopRunning
	l.ctrl = make(chan ctrlKind)
	l.done = make(chan struct{})
	go l.run()
	return nil
}

// Pause приостанавливает тики: Running -> Paused.
// Горутина цикла остается живой (в отличие от Stop); действия в очередях
// копятся, но не дренируются.
func (l *Loop) Pause() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LoopRunning {
		return fmt.Errorf("cannot pause loop from state %s", l.state)
	}
	l.state = LoopPaused
	l.ctrl <- ctrlPause
	return nil
}

// Resume возобновляет тики: Paused -> Running.
// Точка отсчета времени сбрасывается на "сейчас": накопленная длительность
// паузы никогда не превращается в гигантский deltaTime.
func (l *Loop) Resume() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LoopPaused {
		return fmt.Errorf("cannot resume loop from state %s", l.state)
	}
	l.state = LoopRunning
	l.ctrl <- ctrlResume
	return nil
}

// Stop гасит цикл из Running или Paused и дожидается выхода горутины.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if l.state != LoopRunning && l.state != LoopPaused {
		l.mu.Unlock()
		return fmt.Errorf("cannot stop loop from state %s", l.state)
	}
	l.state = LoopStopped
	ctrl := l.ctrl
	done := l.done
	l.mu.Unlock()

	ctrl <- ctrlStop
	<-done
	return nil
}

func (l *Loop) run() {
	defer close(l.done)
	logger.Log.WithField("interval", l.interval.String()).Info("Simulation loop started")

	for {
		// Контрольная точка: неблокирующая проверка pause/stop.
		select {
		case msg := <-l.ctrl:
			if !l.handleCtrl(msg) {
				return
			}
			// После паузы начинаем итерацию заново со свежим временем.
			continue
		default:
		}

		tickStart := time.Now()
		l.runTick()
		elapsed := time.Since(tickStart)

		if remaining := l.interval - elapsed; remaining > 0 {
			// Единственная точка ожидания цикла - досыпание до следующего тика.
			select {
			case <-time.After(remaining):
			case msg := <-l.ctrl:
				if !l.handleCtrl(msg) {
					return
				}
			}
		} else {
			logger.Log.WithFields(map[string]any{
				"tick":    atomic.LoadUint64(&l.tick),
				"elapsed": elapsed.String(),
			}).Debug("Slow tick, starting next immediately")
		}
	}
}

// handleCtrl обрабатывает управляющее сообщение.
// На pause блокируется до resume/stop. Возвращает false на stop.
func (l *Loop) handleCtrl(msg ctrlKind) bool {
	switch msg {
	case ctrlStop:
		logger.Log.Info("Simulation loop stopped")
		return false
	case ctrlPause:
		logger.Log.Info("Simulation loop paused")
		for m := range l.ctrl {
			switch m {
			case ctrlResume:
				logger.Log.Info("Simulation loop resumed")
				return true
			case ctrlStop:
				logger.Log.Info("Simulation loop stopped")
				return false
			}
		}
	}
	return true
}

// runTick - один шаг симуляции (алгоритм фиксирован):
// сессионные запросы, дренаж очередей, интеграция мира, дельта, рассылка.
func (l *Loop) runTick() {
	if l.deps.DrainSession != nil {
		l.deps.DrainSession()
	}

	actions := l.deps.Actions.DrainAll()
	commands := l.deps.Commands.DrainAll()
	if len(actions) > 0 || len(commands) > 0 {
		logger.Log.WithFields(map[string]any{
			"actions":  len(actions),
			"commands": len(commands),
		}).Debug("Drained input queues")
	}

	for _, a := range actions {
		l.deps.ApplyAction(a)
	}
	for _, c := range commands {
		l.deps.ApplyCommand(c)
	}

	l.safeWorldTick()

	delta := l.deps.World.ComputeDelta()
	delta.Tick = atomic.LoadUint64(&l.tick)
	if !delta.IsEmpty() {
		l.deps.Broadcast(delta)
	}

	atomic.AddUint64(&l.tick, 1)
}

// safeWorldTick изолирует панику внутри интеграции: итерация потеряна,
// цикл живет дальше и дождется следующего тика.
func (l *Loop) safeWorldTick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithField("panic", r).Error("World tick panicked, skipping iteration")
		}
	}()
	l.deps.World.Tick(l.interval.Seconds())
}
