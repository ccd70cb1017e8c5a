package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// Source names where a map was found.
const (
	SourceBuiltin = "builtin"
	SourceStore   = "store"
)

// ErrReadOnly is returned when saving over a built-in map.
var ErrReadOnly = errors.New("built-in maps are read-only")

// Registry resolves map ids. Built-in maps shadow stored maps with the
// same id. The built-in set is fixed at construction.
type Registry struct {
	builtin map[string]*world.MapConfig
	order   []string
	store   Store
}

// New creates a registry over the given built-in maps and store.
func New(builtin []*world.MapConfig, store Store) *Registry {
	r := &Registry{
		builtin: make(map[string]*world.MapConfig, len(builtin)),
		store:   store,
	}
	for _, cfg := range builtin {
		if _, dup := r.builtin[cfg.ID]; !dup {
			r.order = append(r.order, cfg.ID)
		}
		r.builtin[cfg.ID] = cfg
	}
	return r
}

// NewDefault creates a registry over the embedded maps.
func NewDefault(store Store) (*Registry, error) {
	maps, err := gamedata.LoadMaps()
	if err != nil {
		return nil, err
	}
	return New(maps, store), nil
}

// Open opens the configured store and layers the embedded maps over it.
func Open(ctx context.Context, cfg StoreConfig) (*Registry, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	r, err := NewDefault(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return r, nil
}

// Get loads, validates and transposes a map. Structurally invalid maps
// return a *world.StructuralError; warnings, including unreachable tiles,
// are logged and the map is still returned.
func (r *Registry) Get(ctx context.Context, id string) (*world.Level, error) {
	tracer := telemetry.Tracer("registry")
	ctx, span := tracer.Start(ctx, "registry.load")
	defer span.End()
	span.SetAttributes(attribute.String("map.id", id))

	cfg, source, err := r.lookup(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("map.source", source))

	result := world.CheckConnectivity(cfg)
	if err := result.Err(id); err != nil {
		logger.Error("map failed validation", "id", id, "source", source, "errors", strings.Join(result.Errors, "; "))
		span.RecordError(err)
		span.SetStatus(codes.Error, "structural error")
		return nil, err
	}
	for _, w := range result.Warnings {
		logger.Warning("map validation warning", "id", id, "warning", w)
	}

	logger.Info("map loaded",
		"id", id,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"source", source,
	)
	return &world.Level{Config: cfg, Columns: world.Transpose(cfg.Tiles)}, nil
}

// lookup returns a private copy of the map config and its source.
func (r *Registry) lookup(ctx context.Context, id string) (*world.MapConfig, string, error) {
	if cfg, ok := r.builtin[id]; ok {
		return cfg.Clone(), SourceBuiltin, nil
	}

	if r.store == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	cfg, err := r.store.LoadMap(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return cfg, SourceStore, nil
}

// Put validates and saves a map to the store. Structurally invalid maps and
// ids of built-in maps are refused.
func (r *Registry) Put(ctx context.Context, cfg *world.MapConfig) error {
	if _, builtin := r.builtin[cfg.ID]; builtin {
		return fmt.Errorf("%w: %s", ErrReadOnly, cfg.ID)
	}
	if err := world.Validate(cfg).Err(cfg.ID); err != nil {
		return err
	}
	if r.store == nil {
		return errors.New("registry has no store")
	}
	return r.store.SaveMap(ctx, cfg)
}

// IDs lists built-in map ids in load order followed by stored ids.
func (r *Registry) IDs(ctx context.Context) ([]string, error) {
	ids := append([]string(nil), r.order...)

	if r.store == nil {
		return ids, nil
	}
	stored, err := r.store.ListMaps(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range stored {
		if _, shadowed := r.builtin[id]; !shadowed {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
