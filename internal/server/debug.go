package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"frontier-server/internal/domain"
	"frontier-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/state", h.handleState)
	mux.HandleFunc("/debug/entities", h.handleDumpEntities)
	mux.HandleFunc("/debug/nearby", h.handleNearby)
	mux.HandleFunc("/debug/pause", h.handlePause)
	mux.HandleFunc("/debug/resume", h.handleResume)
}

// /debug/state - сводка по циклу, очередям и подписчикам
func (h *DebugHandler) handleState(w http.ResponseWriter, r *http.Request) {
	type StateSummary struct {
		LoopState      string `json:"loop_state"`
		Tick           uint64 `json:"tick"`
		EntityCount    int    `json:"entity_count"`
		PendingActions int    `json:"pending_actions"`
		PendingOrders  int    `json:"pending_orders"`
		Subscribers    int    `json:"subscribers"`
	}

	writeJSON(w, StateSummary{
		LoopState:      h.Service.Loop.State().String(),
		Tick:           h.Service.Loop.Tick(),
		EntityCount:    h.Service.World.Count(),
		PendingActions: h.Service.Actions.Len(),
		PendingOrders:  h.Service.Commands.Len(),
		Subscribers:    h.Service.Hub.SubscriberCount(),
	})
}

// /debug/entities - дамп всех сущностей (включая скрытые от клиента поля).
// Чтение идет конкурентно с циклом без блокировок - для дебага сойдет,
// для продовой телеметрии понадобится снапшот через очередь.
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.World.FullState())
}

// /debug/nearby?x=500&y=500&r=100 - проверка пространственного индекса
func (h *DebugHandler) handleNearby(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	radius, errR := strconv.ParseFloat(r.URL.Query().Get("r"), 64)
	if errX != nil || errY != nil || errR != nil {
		http.Error(w, "x, y and r query params are required", http.StatusBadRequest)
		return
	}

	ids := []string{}
	for _, e := range h.Service.World.QueryRadius(domain.Vec2{X: x, Y: y}, radius) {
		ids = append(ids, e.ID)
	}
	writeJSON(w, ids)
}

// /debug/pause и /debug/resume управляют циклом симуляции.
func (h *DebugHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Loop.Pause(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"loop_state": h.Service.Loop.State().String()})
}

func (h *DebugHandler) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Loop.Resume(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"loop_state": h.Service.Loop.State().String()})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
