// Headless-бот: подключается к серверу как обычный клиент, создает или
// загружает игрока и бродит по миру случайными направлениями. Нужен для
// дымовых прогонов протокола и нагрузочных экспериментов без фронтенда.
package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"frontier-server/pkg/api"
	"frontier-server/pkg/interp"
	"frontier-server/pkg/logger"
)

func init() {
	logger.Init()
}

type bot struct {
	conn *websocket.Conn

	mu       sync.Mutex
	playerID string
	entityID string // активная сущность
	view     *interp.Interpolator
}

func main() {
	var (
		addr       string
		playerID   string
		interval   time.Duration
		interpRate float64
	)
	flag.StringVar(&addr, "addr", "ws://127.0.0.1:5000/ws", "Server websocket URL")
	flag.StringVar(&playerID, "player", "", "Player to load (empty creates a new one)")
	flag.DurationVar(&interval, "interval", 50*time.Millisecond, "Input poll interval")
	flag.Float64Var(&interpRate, "interp", 10, "Interpolation rate, 1/s")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		logger.Log.Fatal("Dial error: ", err)
	}
	defer conn.Close()

	b := &bot{conn: conn, view: interp.New(interpRate)}
	logger.Log.WithField("addr", addr).Info("Bot connected")

	go b.readLoop()

	// Создаем нового игрока или грузим существующего.
	if playerID == "" {
		b.send(api.MsgNewPlayer, struct{}{})
	} else {
		b.send(api.MsgLoadPlayer, api.PlayerRef{PlayerID: playerID})
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dir := randomDirection()
	lastTurn := time.Now()
	lastStep := time.Now()

	for {
		select {
		case <-stop:
			logger.Log.Info("Bot shutting down")
			return
		case <-ticker.C:
			now := time.Now()
			b.view.Step(now.Sub(lastStep).Seconds())
			lastStep = now

			b.mu.Lock()
			entityID := b.entityID
			b.mu.Unlock()
			if entityID == "" {
				continue
			}

			// Меняем направление каждые пару секунд.
			if now.Sub(lastTurn) > 2*time.Second {
				dir = randomDirection()
				lastTurn = now
				if p, ok := b.view.Display(entityID); ok {
					logger.Log.WithFields(map[string]any{
						"x": p.X,
						"y": p.Y,
					}).Info("Bot wandering")
				}
			}

			b.send(api.MsgPlayerAction, api.PlayerActionPayload{
				Type:      "move",
				Direction: &dir,
			})
		}
	}
}

func randomDirection() api.Direction {
	dirs := []api.Direction{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {},
	}
	return dirs[rand.Intn(len(dirs))]
}

func (b *bot) send(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Log.WithError(err).Error("Marshal error")
		return
	}
	if err := b.conn.WriteJSON(api.ClientMessage{Type: msgType, Payload: raw}); err != nil {
		logger.Log.Fatal("Write error: ", err)
	}
}

func (b *bot) readLoop() {
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := b.conn.ReadJSON(&msg); err != nil {
			logger.Log.Fatal("Read error: ", err)
		}
		b.handle(msg.Type, msg.Payload)
	}
}

func (b *bot) handle(msgType string, payload json.RawMessage) {
	switch msgType {
	case api.MsgInitialState:
		var state api.InitialState
		if err := json.Unmarshal(payload, &state); err != nil {
			logger.Log.WithError(err).Warn("Bad initial_state")
			return
		}
		b.view.ApplySnapshot(state.Entities)
		logger.Log.WithField("entities", len(state.Entities)).Info("World snapshot received")

	case api.MsgPlayerLoaded:
		var state api.InitialState
		if err := json.Unmarshal(payload, &state); err != nil {
			logger.Log.WithError(err).Warn("Bad player_loaded")
			return
		}
		b.view.ApplySnapshot(state.Entities)
		b.mu.Lock()
		b.playerID = state.PlayerID
		if len(state.ControlledEntityIDs) > 0 {
			b.entityID = state.ControlledEntityIDs[0]
		}
		b.mu.Unlock()
		logger.Log.WithField("player_id", state.PlayerID).Info("Player loaded")

	case api.MsgNewPlayerInitialized:
		var created api.NewPlayerInitialized
		if err := json.Unmarshal(payload, &created); err != nil {
			logger.Log.WithError(err).Warn("Bad new_player_initialized")
			return
		}
		logger.Log.WithField("player_id", created.PlayerID).Info("Player created, loading")
		b.send(api.MsgLoadPlayer, api.PlayerRef{PlayerID: created.PlayerID})

	case api.MsgStateUpdate:
		var update api.StateUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			logger.Log.WithError(err).Warn("Bad state_update")
			return
		}
		b.view.ApplyUpdate(update)

	case api.MsgError:
		var e api.ErrorMessage
		_ = json.Unmarshal(payload, &e)
		logger.Log.WithField("message", e.Message).Warn("Server error")
	}
}
