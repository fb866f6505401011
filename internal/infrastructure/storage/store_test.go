package storage

import (
	"os"
	"path/filepath"
	"testing"

	"frontier-server/internal/domain"
	"frontier-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testPlayer() (*domain.Player, []*domain.Entity) {
	pc := domain.NewPlayerCharacter("entity_pc", domain.Vec2{X: 500, Y: 500})
	pc.Inventory.Items = []string{"bandage", "torch"}
	companion := domain.NewPartyMember("entity_comp", domain.Vec2{X: 524, Y: 500})

	return &domain.Player{
		PlayerID:            "p1",
		Name:                "Tester",
		WorldID:             "overworld_001",
		AreaID:              "frontier_001",
		ControlledEntityIDs: []string{pc.ID, companion.ID},
	}, []*domain.Entity{pc, companion}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	player, entities := testPlayer()

	if store.Exists(player.PlayerID) {
		t.Fatal("Player must not exist before save")
	}
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(player.PlayerID) {
		t.Fatal("Player must exist after save")
	}

	loaded, loadedEntities, err := store.LoadPlayer(player.PlayerID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.PlayerID != player.PlayerID || loaded.Name != player.Name {
		t.Errorf("Profile mismatch: %+v", loaded)
	}
	if len(loaded.ControlledEntityIDs) != 2 {
		t.Errorf("Expected 2 controlled entities, got %v", loaded.ControlledEntityIDs)
	}
	if len(loadedEntities) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(loadedEntities))
	}

	var pc *domain.Entity
	for _, e := range loadedEntities {
		if e.ID == "entity_pc" {
			pc = e
		}
	}
	if pc == nil {
		t.Fatal("Player character missing")
	}
	if pc.Pos.X != 500 || pc.Combat == nil || pc.Combat.HP != domain.DefaultHP {
		t.Errorf("Entity state lost in round trip: %+v", pc)
	}
	if len(pc.Inventory.Items) != 2 {
		t.Errorf("Inventory lost in round trip: %v", pc.Inventory.Items)
	}
}

func TestStore_PerPlayerDirectoryLayout(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	player, entities := testPlayer()
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"player.json",
		"world-overworld_001.json",
		"area-frontier_001.json",
	} {
		path := filepath.Join(root, "players", "p1", name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestStore_ListPlayersSkipsBrokenSaves(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	player, entities := testPlayer()
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}

	// A corrupt save next to a good one.
	brokenDir := filepath.Join(root, "players", "broken")
	if err := os.MkdirAll(brokenDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(brokenDir, "player.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	players, err := store.ListPlayers()
	if err != nil {
		t.Fatal(err)
	}
	if len(players) != 1 || players[0].PlayerID != "p1" {
		t.Errorf("Expected only the valid player, got %+v", players)
	}
}

func TestStore_DeleteArchivesAndRemoves(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	player, entities := testPlayer()
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}

	if err := store.DeletePlayer("p1"); err != nil {
		t.Fatal(err)
	}
	if store.Exists("p1") {
		t.Error("Player must not exist after delete")
	}

	archives, err := os.ReadDir(filepath.Join(root, "archives"))
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) != 1 {
		t.Fatalf("Expected 1 archive, got %d", len(archives))
	}

	files, err := ReadArchive(filepath.Join(root, "archives", archives[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"player.json", "world-overworld_001.json", "area-frontier_001.json"} {
		if _, ok := files[name]; !ok {
			t.Errorf("Archive missing %s", name)
		}
	}
}

func TestStore_DeleteUnknownPlayerFails(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeletePlayer("ghost"); err == nil {
		t.Error("Deleting an unknown player must fail")
	}
}

func TestStore_SaveOverwritesAtomically(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	player, entities := testPlayer()
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}

	entities[0].Pos = domain.Vec2{X: 1, Y: 2}
	if err := store.SavePlayer(player, 1000, 1000, entities); err != nil {
		t.Fatal(err)
	}

	_, loaded, err := store.LoadPlayer("p1")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range loaded {
		if e.ID == "entity_pc" && e.Pos.X != 1 {
			t.Errorf("Second save not visible: %v", e.Pos)
		}
	}

	// No leftover temp files.
	files, _ := os.ReadDir(filepath.Join(root, "players", "p1"))
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".tmp" {
			t.Errorf("Leftover temp file %s", f.Name())
		}
	}
}
