package registry

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

func testMap(id string) *world.MapConfig {
	return &world.MapConfig{
		ID:     id,
		Name:   "Test " + id,
		Width:  3,
		Height: 3,
		Tiles: [][]world.TileType{
			{world.Turn, world.ThreeWay, world.Turn},
			{world.Wall, world.Corridor, world.Wall},
			{world.Wall, world.DeadEnd, world.Wall},
		},
		StartPosition:  world.Position{X: 0, Y: 0},
		StartDirection: world.East,
		Metadata:       &world.Metadata{Difficulty: world.DifficultyEasy},
	}
}

// exerciseStore runs the common Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.LoadMap(ctx, "missing"); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("LoadMap(missing) error = %v, want ErrMapNotFound", err)
	}

	if err := s.SaveMap(ctx, testMap("b")); err != nil {
		t.Fatalf("SaveMap(b) error = %v", err)
	}
	if err := s.SaveMap(ctx, testMap("a")); err != nil {
		t.Fatalf("SaveMap(a) error = %v", err)
	}

	updated := testMap("a")
	updated.Name = "Renamed"
	if err := s.SaveMap(ctx, updated); err != nil {
		t.Fatalf("SaveMap(a) again error = %v", err)
	}

	got, err := s.LoadMap(ctx, "a")
	if err != nil {
		t.Fatalf("LoadMap(a) error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}
	if got.StartDirection != world.East || got.Tiles[2][1] != world.DeadEnd {
		t.Errorf("round trip lost data: %+v", got)
	}

	ids, err := s.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps() error = %v", err)
	}
	if !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ListMaps() = %v, want [a b]", ids)
	}
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "maps.json")
	s, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	exerciseStore(t, s)

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := reopened.LoadMap(context.Background(), "a")
	if err != nil {
		t.Fatalf("LoadMap() after reopen error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name after reopen = %q", got.Name)
	}
}

func TestJSONStoreReturnsCopies(t *testing.T) {
	s, err := NewJSONStore("")
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	ctx := context.Background()
	m := testMap("a")
	if err := s.SaveMap(ctx, m); err != nil {
		t.Fatalf("SaveMap() error = %v", err)
	}
	m.Tiles[0][0] = world.Wall

	got, _ := s.LoadMap(ctx, "a")
	if got.Tiles[0][0] != world.Turn {
		t.Error("store shares tiles with the caller")
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := OpenStore(context.Background(), StoreConfig{})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg := StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "db", "maps.db"),
	}
	s, err := OpenStore(ctx, cfg)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenStore(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.LoadMap(ctx, "b"); err != nil {
		t.Errorf("LoadMap() after reopen error = %v", err)
	}
}

func TestOpenStoreErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := OpenStore(ctx, StoreConfig{Driver: "redis"}); err == nil {
		t.Error("OpenStore() accepted an unknown driver")
	}
	if _, err := OpenStore(ctx, StoreConfig{Driver: "postgres"}); err == nil {
		t.Error("OpenStore() accepted postgres without a dsn")
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT config FROM maps WHERE id = ? AND width = ?"
	if got := rebind(NewDialect(DialectSQLite), query); got != query {
		t.Errorf("sqlite rebind = %q", got)
	}
	want := "SELECT config FROM maps WHERE id = $1 AND width = $2"
	if got := rebind(NewDialect(DialectPostgres), query); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}
