package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// JSONStore keeps maps in a single JSON file. With an empty path it holds
// them in memory only.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *jsonData
}

type jsonData struct {
	Maps map[string]*world.MapConfig `json:"maps"`
}

// NewJSONStore opens the JSON file at filePath, creating it if needed.
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     &jsonData{Maps: make(map[string]*world.MapConfig)},
	}
	if filePath == "" {
		return store, nil
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
		return store, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := store.saveToFile(); err != nil {
		return nil, fmt.Errorf("failed to create JSON store file: %w", err)
	}
	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Maps == nil {
		js.data.Maps = make(map[string]*world.MapConfig)
	}
	return nil
}

func (js *JSONStore) saveToFile() error {
	if js.filePath == "" {
		return nil
	}

	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	return os.WriteFile(js.filePath, data, 0644)
}

// SaveMap stores a copy of cfg, replacing any map with the same id.
func (js *JSONStore) SaveMap(_ context.Context, cfg *world.MapConfig) error {
	js.mutex.Lock()
	js.data.Maps[cfg.ID] = cfg.Clone()
	js.mutex.Unlock()

	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("failed to save map %s: %w", cfg.ID, err)
	}
	return nil
}

// LoadMap returns a copy of the map with the given id.
func (js *JSONStore) LoadMap(_ context.Context, id string) (*world.MapConfig, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	cfg, exists := js.data.Maps[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	return cfg.Clone(), nil
}

// ListMaps returns the stored map ids in sorted order.
func (js *JSONStore) ListMaps(_ context.Context) ([]string, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	ids := make([]string, 0, len(js.data.Maps))
	for id := range js.data.Maps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the JSON store.
func (js *JSONStore) Close() error {
	return nil
}
