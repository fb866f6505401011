package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// archiveBundle - один самодостаточный файл со всем сохранением игрока.
type archiveBundle struct {
	PlayerID   string                     `json:"player_id"`
	ArchivedAt time.Time                  `json:"archived_at"`
	Files      map[string]json.RawMessage `json:"files"`
}

// archivePlayer сжимает каталог игрока в один zstd-файл перед удалением.
// Восстановление из архива ручное: это страховка от случайного delete_player,
// а не фича игры.
func (s *Store) archivePlayer(playerID string) error {
	dir := s.playerDir(playerID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read player dir: %w", err)
	}

	bundle := archiveBundle{
		PlayerID:   playerID,
		ArchivedAt: time.Now().UTC(),
		Files:      make(map[string]json.RawMessage),
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		bundle.Files[entry.Name()] = json.RawMessage(data)
	}

	name := fmt.Sprintf("%s-%d.json.zst", playerID, bundle.ArchivedAt.Unix())
	path := filepath.Join(s.root, "archives", name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to init zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(bundle); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// ReadArchive распаковывает архив удаленного игрока (для инструментов
// восстановления и тестов).
func ReadArchive(path string) (map[string]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to init zstd reader: %w", err)
	}
	defer dec.Close()

	var bundle archiveBundle
	if err := json.NewDecoder(dec).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return bundle.Files, nil
}
