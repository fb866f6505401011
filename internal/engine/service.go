package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"frontier-server/internal/config"
	"frontier-server/internal/domain"
	"frontier-server/internal/engine/handlers"
	"frontier-server/internal/engine/handlers/actions"
	"frontier-server/internal/engine/handlers/party"
	"frontier-server/internal/infrastructure/storage"
	"frontier-server/internal/network"
	"frontier-server/internal/sim"
	"frontier-server/pkg/api"
	"frontier-server/pkg/logger"
)

// Идентификаторы мира и области прототипа. Пока мир один,
// генератор миров появится вместе с переходами между областями.
const (
	DefaultWorldID = "overworld_001"
	DefaultAreaID  = "frontier_001"
)

// sessionKind - вид сессионного запроса, мутирующего мир.
type sessionKind int

const (
	sessInit sessionKind = iota
	sessLoad
	sessDelete
	sessDisconnect
)

type sessionRequest struct {
	kind     sessionKind
	clientID string
	playerID string
}

// GameService - ядро сервера: владеет миром, очередями, циклом и реестром
// хендлеров. Сетевые горутины заходят сюда только через HandleClientMessage,
// OnConnect и OnDisconnect; мир трогает исключительно горутина цикла.
type GameService struct {
	cfg   config.Config
	World *sim.World
	Store *storage.Store
	Hub   *network.Broadcaster
	Loop  *Loop

	Actions  *sim.Queue[domain.PlayerAction]
	Commands *sim.Queue[domain.PartyCommand]

	// Сессионные запросы дренируются циклом в начале тика.
	// Буфер большой, чтобы сетевые горутины не блокировались на паузе цикла.
	sessionCh chan sessionRequest

	mu       sync.RWMutex
	players  map[string]*domain.Player // загруженные в мир игроки
	bindings map[string]string         // clientID -> playerID

	actionHandlers  map[domain.ActionType]handlers.HandlerFunc
	commandHandlers map[domain.CommandType]handlers.HandlerFunc
}

// NewGameService собирает сервис и все его подсистемы.
func NewGameService(cfg config.Config, store *storage.Store) *GameService {
	s := &GameService{
		cfg:       cfg,
		World:     sim.NewWorld(cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize),
		Store:     store,
		Hub:       network.NewBroadcaster(),
		Actions:   sim.NewQueue[domain.PlayerAction](),
		Commands:  sim.NewQueue[domain.PartyCommand](),
		sessionCh: make(chan sessionRequest, 256),
		players:   make(map[string]*domain.Player),
		bindings:  make(map[string]string),
	}
	s.registerHandlers()

	s.Loop = NewLoop(cfg.TickRate, LoopDeps{
		World:        s.World,
		Actions:      s.Actions,
		Commands:     s.Commands,
		ApplyAction:  s.applyAction,
		ApplyCommand: s.applyCommand,
		DrainSession: s.drainSessions,
		Broadcast:    s.broadcastDelta,
	})
	return s
}

// registerHandlers связывает типы действий с логикой.
// Обертки берут на себя разбор и валидацию payload.
func (s *GameService) registerHandlers() {
	s.actionHandlers = map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionMove:    handlers.WithPayload(actions.HandleMove),
		domain.ActionAttack:  handlers.WithPayload(actions.HandleAttack),
		domain.ActionUseItem: handlers.WithPayload(actions.HandleUseItem),
		domain.ActionSleep:   handlers.WithEmptyPayload(actions.HandleSleep),
	}
	s.commandHandlers = map[domain.CommandType]handlers.HandlerFunc{
		domain.CommandFollow:       handlers.WithPayload(party.HandleFollow),
		domain.CommandHoldPosition: handlers.WithPayload(party.HandleHoldPosition),
		domain.CommandAttackTarget: handlers.WithPayload(party.HandleAttackTarget),
		domain.CommandMoveTo:       handlers.WithPayload(party.HandleMoveTo),
	}
}

// --- ВХОД ИЗ СЕТЕВЫХ ГОРУТИН ---

// OnConnect регистрирует нового клиента: полный снимок мира приедет
// через сессионный запрос на ближайшем тике.
func (s *GameService) OnConnect(clientID string) {
	s.sessionCh <- sessionRequest{kind: sessInit, clientID: clientID}
}

// OnDisconnect снимает привязку клиента и усыпляет его сущности.
func (s *GameService) OnDisconnect(clientID string) {
	s.sessionCh <- sessionRequest{kind: sessDisconnect, clientID: clientID}
}

// HandleClientMessage - единая точка входа для сообщений клиента.
// Запросы только к файлам обслуживаются прямо здесь; все, что трогает мир,
// уходит в очереди и исполняется циклом.
func (s *GameService) HandleClientMessage(clientID string, msg api.ClientMessage) {
	switch msg.Type {
	case api.MsgRequestPlayerList:
		s.sendPlayerList(clientID)
	case api.MsgNewPlayer:
		s.handleNewPlayer(clientID, msg.Payload)
	case api.MsgLoadPlayer:
		s.enqueueSessionRef(clientID, msg.Payload, sessLoad)
	case api.MsgDeletePlayer:
		s.enqueueSessionRef(clientID, msg.Payload, sessDelete)
	case api.MsgPlayerAction:
		s.enqueueAction(clientID, msg.Payload)
	case api.MsgPartyCommand:
		s.enqueueCommand(clientID, msg.Payload)
	default:
		s.sendError(clientID, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *GameService) sendError(clientID, text string) {
	s.Hub.SendTo(clientID, api.ServerMessage{
		Type:    api.MsgError,
		Payload: api.ErrorMessage{Message: text},
	})
}

func (s *GameService) sendPlayerList(clientID string) {
	players, err := s.Store.ListPlayers()
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list players")
		s.sendError(clientID, "failed to list players")
		return
	}

	list := api.PlayerList{Players: make([]api.PlayerSummary, 0, len(players))}
	for _, p := range players {
		list.Players = append(list.Players, api.PlayerSummary{
			PlayerID:            p.PlayerID,
			ControlledEntityIDs: p.ControlledEntityIDs,
		})
	}
	s.Hub.SendTo(clientID, api.ServerMessage{Type: api.MsgPlayerList, Payload: list})
}

// handleNewPlayer создает сохранение нового игрока.
// Живой мир не трогается: клиент загружает персонажа отдельным load_player.
func (s *GameService) handleNewPlayer(clientID string, raw json.RawMessage) {
	var ref struct {
		PlayerID string `json:"player_id"`
		Name     string `json:"name"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ref); err != nil {
			s.sendError(clientID, "invalid new_player payload")
			return
		}
	}
	if ref.PlayerID == "" {
		ref.PlayerID = "player_" + uuid.NewString()
	}
	if s.Store.Exists(ref.PlayerID) {
		s.sendError(clientID, fmt.Sprintf("player %s already exists", ref.PlayerID))
		return
	}

	player, err := s.createSave(ref.PlayerID, ref.Name)
	if err != nil {
		logger.Log.WithField("player_id", ref.PlayerID).WithError(err).Error("Failed to create player save")
		s.sendError(clientID, "failed to create player")
		return
	}

	logger.Log.WithField("player_id", player.PlayerID).Info("New player initialized")
	s.Hub.SendTo(clientID, api.ServerMessage{
		Type: api.MsgNewPlayerInitialized,
		Payload: api.NewPlayerInitialized{
			PlayerID:            player.PlayerID,
			ControlledEntityIDs: player.ControlledEntityIDs,
		},
	})
}

// createSave пишет сохранение нового игрока: персонаж в центре мира,
// напарник рядом. Живой мир не трогается.
func (s *GameService) createSave(playerID, name string) (*domain.Player, error) {
	center := domain.Vec2{X: s.cfg.WorldWidth / 2, Y: s.cfg.WorldHeight / 2}
	pc := domain.NewPlayerCharacter(domain.NewEntityID(), center)
	companion := domain.NewPartyMember(domain.NewEntityID(), center.Add(domain.Vec2{X: 24}))

	player := &domain.Player{
		PlayerID:            playerID,
		Name:                name,
		WorldID:             DefaultWorldID,
		AreaID:              DefaultAreaID,
		ControlledEntityIDs: []string{pc.ID, companion.ID},
	}
	entities := []*domain.Entity{pc, companion}

	if err := s.Store.SavePlayer(player, s.cfg.WorldWidth, s.cfg.WorldHeight, entities); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *GameService) enqueueSessionRef(clientID string, raw json.RawMessage, kind sessionKind) {
	var ref api.PlayerRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		s.sendError(clientID, "invalid payload format")
		return
	}
	if err := ref.Validate(); err != nil {
		s.sendError(clientID, err.Error())
		return
	}
	s.sessionCh <- sessionRequest{kind: kind, clientID: clientID, playerID: ref.PlayerID}
}

// enqueueAction кладет действие в очередь. Разбор payload откладывается
// до исполнения хендлером; здесь проверяется лишь тип и привязка клиента.
func (s *GameService) enqueueAction(clientID string, raw json.RawMessage) {
	playerID, ok := s.boundPlayer(clientID)
	if !ok {
		s.sendError(clientID, "no player loaded for this connection")
		return
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		s.sendError(clientID, "invalid action payload")
		return
	}
	action := domain.ParseAction(head.Type)
	if action == domain.ActionUnknown {
		s.sendError(clientID, fmt.Sprintf("unknown action type %q", head.Type))
		return
	}

	s.Actions.Enqueue(domain.PlayerAction{
		Action:   action,
		PlayerID: playerID,
		Payload:  raw,
	})
}

func (s *GameService) enqueueCommand(clientID string, raw json.RawMessage) {
	playerID, ok := s.boundPlayer(clientID)
	if !ok {
		s.sendError(clientID, "no player loaded for this connection")
		return
	}

	var head struct {
		Type     string `json:"type"`
		MemberID string `json:"member_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		s.sendError(clientID, "invalid command payload")
		return
	}
	command := domain.ParseCommand(head.Type)
	if command == domain.CommandUnknown {
		s.sendError(clientID, fmt.Sprintf("unknown command type %q", head.Type))
		return
	}

	s.Commands.Enqueue(domain.PartyCommand{
		Command:  command,
		PlayerID: playerID,
		MemberID: head.MemberID,
		Payload:  raw,
	})
}

// --- ПРИВЯЗКИ ---

func (s *GameService) boundPlayer(clientID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pid, ok := s.bindings[clientID]
	return pid, ok
}

func (s *GameService) clientFor(playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for cid, pid := range s.bindings {
		if pid == playerID {
			return cid, true
		}
	}
	return "", false
}

func (s *GameService) bind(clientID, playerID string) {
	s.mu.Lock()
	s.bindings[clientID] = playerID
	s.mu.Unlock()
}

func (s *GameService) unbind(clientID string) {
	s.mu.Lock()
	delete(s.bindings, clientID)
	s.mu.Unlock()
}

// --- ИСПОЛНЕНИЕ В ГОРУТИНЕ ЦИКЛА ---

// drainSessions обрабатывает накопившиеся сессионные запросы.
// Зовется циклом в начале каждого тика, не блокируется.
func (s *GameService) drainSessions() {
	for {
		select {
		case req := <-s.sessionCh:
			s.handleSession(req)
		default:
			return
		}
	}
}

func (s *GameService) handleSession(req sessionRequest) {
	switch req.kind {
	case sessInit:
		s.Hub.SendTo(req.clientID, api.ServerMessage{
			Type:    api.MsgInitialState,
			Payload: BuildInitialState(s.World, nil),
		})
	case sessLoad:
		s.loadPlayer(req.clientID, req.playerID)
	case sessDelete:
		s.deletePlayer(req.clientID, req.playerID)
	case sessDisconnect:
		s.disconnectClient(req.clientID)
	}
}

// loadPlayer поднимает сохранение игрока в живой мир и привязывает клиента.
// Отсутствующее сохранение создается на месте - load_player работает как
// "загрузи или начни новую игру".
func (s *GameService) loadPlayer(clientID, playerID string) {
	s.mu.RLock()
	_, loaded := s.players[playerID]
	s.mu.RUnlock()

	if loaded {
		// Игрок уже в мире (например, спит после дисконнекта) -
		// просто перепривязываем и будим.
		s.rebindPlayer(clientID, playerID)
		return
	}

	if !s.Store.Exists(playerID) {
		if _, err := s.createSave(playerID, ""); err != nil {
			logger.Log.WithField("player_id", playerID).WithError(err).Error("Failed to create player save")
			s.sendError(clientID, "failed to create player")
			return
		}
		logger.Log.WithField("player_id", playerID).Info("New player initialized on load")
	}

	player, entities, err := s.Store.LoadPlayer(playerID)
	if err != nil {
		logger.Log.WithField("player_id", playerID).WithError(err).Warn("Failed to load player")
		s.sendError(clientID, fmt.Sprintf("player %s not found", playerID))
		return
	}

	for _, e := range entities {
		if err := s.World.AddEntity(e); err != nil {
			logger.Log.WithField("entity_id", e.ID).WithError(err).Error("Failed to spawn entity")
		}
	}

	s.mu.Lock()
	s.players[playerID] = player
	s.bindings[clientID] = playerID
	s.mu.Unlock()

	logger.Log.WithFields(map[string]any{
		"player_id": playerID,
		"entities":  len(entities),
	}).Info("Player loaded")

	s.Hub.SendTo(clientID, api.ServerMessage{
		Type:    api.MsgPlayerLoaded,
		Payload: BuildInitialState(s.World, player),
	})
}

func (s *GameService) rebindPlayer(clientID, playerID string) {
	s.mu.Lock()
	player := s.players[playerID]
	s.bindings[clientID] = playerID
	s.mu.Unlock()

	// Разбудить спящих после прошлого дисконнекта.
	for _, id := range player.ControlledEntityIDs {
		if e := s.World.Entity(id); e != nil && e.State == domain.StateSleeping {
			e.State = domain.StateIdle
			e.Dirty = true
			s.World.MarkDirty(id)
		}
	}

	s.Hub.SendTo(clientID, api.ServerMessage{
		Type:    api.MsgPlayerLoaded,
		Payload: BuildInitialState(s.World, player),
	})
}

// deletePlayer выгружает игрока из мира (если загружен) и стирает сохранение.
func (s *GameService) deletePlayer(clientID, playerID string) {
	if !s.Store.Exists(playerID) {
		s.sendError(clientID, fmt.Sprintf("player %s does not exist", playerID))
		return
	}

	s.mu.Lock()
	player, loaded := s.players[playerID]
	if loaded {
		delete(s.players, playerID)
	}
	for cid, pid := range s.bindings {
		if pid == playerID {
			delete(s.bindings, cid)
		}
	}
	s.mu.Unlock()

	if loaded {
		for _, id := range player.ControlledEntityIDs {
			s.World.RemoveEntity(id)
		}
	}

	if err := s.Store.DeletePlayer(playerID); err != nil {
		logger.Log.WithField("player_id", playerID).WithError(err).Error("Failed to delete player")
		s.sendError(clientID, "failed to delete player")
		return
	}

	logger.Log.WithField("player_id", playerID).Info("Player deleted")
	s.Hub.SendTo(clientID, api.ServerMessage{
		Type:    api.MsgPlayerDeleted,
		Payload: api.PlayerDeleted{PlayerID: playerID},
	})
	s.sendPlayerList(clientID)
}

// disconnectClient сохраняет игрока и усыпляет его сущности.
// Сущности остаются в мире: повторный load_player их разбудит.
func (s *GameService) disconnectClient(clientID string) {
	s.mu.Lock()
	playerID, ok := s.bindings[clientID]
	delete(s.bindings, clientID)
	player := s.players[playerID]
	s.mu.Unlock()

	if !ok || player == nil {
		return
	}

	if err := s.savePlayer(player); err != nil {
		logger.Log.WithField("player_id", playerID).WithError(err).Error("Failed to save player on disconnect")
	}

	// Усыпление идет через очередь, как обычное действие: даже сессионный
	// код не мутирует сущности в обход общего пути.
	s.Actions.Enqueue(domain.PlayerAction{Action: domain.ActionSleep, PlayerID: playerID})

	logger.Log.WithField("player_id", playerID).Info("Client disconnected, player saved")
}

func (s *GameService) savePlayer(player *domain.Player) error {
	entities := make([]*domain.Entity, 0, len(player.ControlledEntityIDs))
	for _, id := range player.ControlledEntityIDs {
		if e := s.World.Entity(id); e != nil {
			entities = append(entities, e.Clone())
		}
	}
	return s.Store.SavePlayer(player, s.cfg.WorldWidth, s.cfg.WorldHeight, entities)
}

// applyAction исполняет одно действие из очереди.
// Ошибка или паника хендлера стоит только этого действия, не тика.
func (s *GameService) applyAction(a domain.PlayerAction) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(map[string]any{
				"action": a.Action.String(),
				"panic":  r,
			}).Error("Action handler panicked")
		}
	}()

	s.mu.RLock()
	player := s.players[a.PlayerID]
	s.mu.RUnlock()
	if player == nil {
		logger.Log.WithField("player_id", a.PlayerID).Debug("Dropping action of unloaded player")
		return
	}

	handler, ok := s.actionHandlers[a.Action]
	if !ok {
		logger.Log.WithField("action", a.Action.String()).Warn("No handler registered for action")
		return
	}

	ctx := handlers.Context{
		World:  s.World,
		Actor:  s.World.Entity(player.ActiveEntityID()),
		Player: player,
	}
	if ctx.Actor == nil && a.Action != domain.ActionSleep {
		logger.Log.WithField("player_id", a.PlayerID).Debug("Dropping action without active entity")
		return
	}

	res, err := handler(ctx, a.Payload)
	if err != nil {
		logger.Log.WithFields(map[string]any{
			"action":    a.Action.String(),
			"player_id": a.PlayerID,
		}).WithError(err).Debug("Action rejected")
		if cid, ok := s.clientFor(a.PlayerID); ok {
			s.sendError(cid, err.Error())
		}
		return
	}
	if res.Msg != "" {
		logger.Log.Debug(res.Msg)
	}
}

// applyCommand исполняет один приказ напарнику.
func (s *GameService) applyCommand(c domain.PartyCommand) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(map[string]any{
				"command": c.Command.String(),
				"panic":   r,
			}).Error("Command handler panicked")
		}
	}()

	s.mu.RLock()
	player := s.players[c.PlayerID]
	s.mu.RUnlock()
	if player == nil {
		return
	}

	reject := func(text string) {
		if cid, ok := s.clientFor(c.PlayerID); ok {
			s.sendError(cid, text)
		}
	}

	if !player.Controls(c.MemberID) {
		reject(fmt.Sprintf("entity %s is not controlled by player %s", c.MemberID, c.PlayerID))
		return
	}
	member := s.World.Entity(c.MemberID)
	if member == nil {
		reject(fmt.Sprintf("entity %s does not exist", c.MemberID))
		return
	}
	if member.Party == nil {
		reject(fmt.Sprintf("entity %s does not take party commands", c.MemberID))
		return
	}

	handler, ok := s.commandHandlers[c.Command]
	if !ok {
		logger.Log.WithField("command", c.Command.String()).Warn("No handler registered for command")
		return
	}

	ctx := handlers.Context{World: s.World, Actor: member, Player: player}
	if _, err := handler(ctx, c.Payload); err != nil {
		logger.Log.WithFields(map[string]any{
			"command":   c.Command.String(),
			"member_id": c.MemberID,
		}).WithError(err).Debug("Command rejected")
		reject(err.Error())
	}
}

// broadcastDelta рассылает дельту тика всем подписчикам.
func (s *GameService) broadcastDelta(delta *domain.DeltaSnapshot) {
	s.Hub.Broadcast(api.ServerMessage{
		Type:    api.MsgStateUpdate,
		Payload: BuildStateUpdate(delta),
	})
}

// SaveAll сохраняет всех загруженных игроков.
// Зовется на штатном выключении уже после остановки цикла, когда мир
// больше никто не мутирует.
func (s *GameService) SaveAll() {
	s.mu.RLock()
	players := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	s.mu.RUnlock()

	for _, p := range players {
		if err := s.savePlayer(p); err != nil {
			logger.Log.WithField("player_id", p.PlayerID).WithError(err).Error("Failed to save player on shutdown")
		} else {
			logger.Log.WithField("player_id", p.PlayerID).Info("Player saved")
		}
	}
}
