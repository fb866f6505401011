// Package storage - файловая персистентность игроков.
// Раскладка на диске повторяет доменную модель:
//
//	<root>/players/<player_id>/player.json     - профиль игрока
//	<root>/players/<player_id>/world-<id>.json - метаданные мира
//	<root>/players/<player_id>/area-<id>.json  - сущности области
//	<root>/archives/<player_id>-<ts>.json.zst  - архив удаленного игрока
//
// Все операции синхронные и зовутся из горутины цикла симуляции,
// поэтому внутренних блокировок здесь нет.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"frontier-server/internal/domain"
	"frontier-server/pkg/logger"
)

type Store struct {
	root string
}

// NewStore готовит дерево каталогов под данными.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{
		filepath.Join(root, "players"),
		filepath.Join(root, "archives"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// worldSave - содержимое world-<id>.json.
type worldSave struct {
	WorldID string    `json:"world_id"`
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	SavedAt time.Time `json:"saved_at"`
}

// areaSave - содержимое area-<id>.json: все сущности области.
type areaSave struct {
	AreaID   string           `json:"area_id"`
	WorldID  string           `json:"world_id"`
	Entities []*domain.Entity `json:"entities"`
	SavedAt  time.Time        `json:"saved_at"`
}

func (s *Store) playerDir(playerID string) string {
	return filepath.Join(s.root, "players", playerID)
}

// Exists сообщает, есть ли сохранение игрока.
func (s *Store) Exists(playerID string) bool {
	_, err := os.Stat(filepath.Join(s.playerDir(playerID), "player.json"))
	return err == nil
}

// ListPlayers возвращает профили всех сохраненных игроков.
// Каталоги с битым player.json пропускаются с предупреждением,
// а не валят весь список.
func (s *Store) ListPlayers() ([]*domain.Player, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "players"))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	players := make([]*domain.Player, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.loadProfile(entry.Name())
		if err != nil {
			logger.Log.WithField("player_id", entry.Name()).WithError(err).Warn("Skipping unreadable player save")
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *Store) loadProfile(playerID string) (*domain.Player, error) {
	data, err := os.ReadFile(filepath.Join(s.playerDir(playerID), "player.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read player profile: %w", err)
	}
	var p domain.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse player profile: %w", err)
	}
	return &p, nil
}

// LoadPlayer возвращает профиль игрока и сущности его области.
func (s *Store) LoadPlayer(playerID string) (*domain.Player, []*domain.Entity, error) {
	p, err := s.loadProfile(playerID)
	if err != nil {
		return nil, nil, err
	}

	areaPath := filepath.Join(s.playerDir(playerID), "area-"+p.AreaID+".json")
	data, err := os.ReadFile(areaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read area save: %w", err)
	}
	var area areaSave
	if err := json.Unmarshal(data, &area); err != nil {
		return nil, nil, fmt.Errorf("failed to parse area save: %w", err)
	}

	return p, area.Entities, nil
}

// SavePlayer пишет профиль, мир и область игрока.
// Каждый файл пишется через временный с переименованием: незаконченная
// запись никогда не затирает валидное сохранение.
func (s *Store) SavePlayer(p *domain.Player, width, height float64, entities []*domain.Entity) error {
	dir := s.playerDir(p.PlayerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create player dir: %w", err)
	}

	now := time.Now().UTC()
	files := map[string]any{
		"player.json": p,
		"world-" + p.WorldID + ".json": worldSave{
			WorldID: p.WorldID,
			Width:   width,
			Height:  height,
			SavedAt: now,
		},
		"area-" + p.AreaID + ".json": areaSave{
			AreaID:   p.AreaID,
			WorldID:  p.WorldID,
			Entities: entities,
			SavedAt:  now,
		},
	}

	for name, payload := range files {
		if err := writeJSONAtomic(filepath.Join(dir, name), payload); err != nil {
			return err
		}
	}
	return nil
}

// DeletePlayer архивирует сохранение и удаляет каталог игрока.
func (s *Store) DeletePlayer(playerID string) error {
	if !s.Exists(playerID) {
		return fmt.Errorf("player %s does not exist", playerID)
	}

	if err := s.archivePlayer(playerID); err != nil {
		// Архив - страховка, а не условие удаления.
		logger.Log.WithField("player_id", playerID).WithError(err).Warn("Failed to archive player before deletion")
	}

	if err := os.RemoveAll(s.playerDir(playerID)); err != nil {
		return fmt.Errorf("failed to delete player %s: %w", playerID, err)
	}
	return nil
}

func writeJSONAtomic(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}
