package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

var (
	// ErrNoLevel is returned when an action needs a loaded level.
	ErrNoLevel = errors.New("no level loaded")
	// ErrNoTransition is returned by Use when the current tile leads nowhere.
	ErrNoTransition = errors.New("nothing to use here")
)

// LevelSource resolves map ids to levels.
type LevelSource interface {
	Get(ctx context.Context, id string) (*world.Level, error)
}

// View is a read-only snapshot of the session for rendering.
type View struct {
	Level      *world.Level
	State      navigation.State
	Projection navigation.Projection
	Tile       world.TileType
	Visuals    []navigation.Visual
}

// Ahead returns the visuals from the player forward.
func (v View) Ahead() []navigation.Visual {
	run := v.Projection.Ahead()
	if len(run) == 0 {
		return nil
	}
	start := v.Projection.PlayerIndex
	return v.Visuals[start : start+len(run)]
}

// current is swapped as a whole so the level and its navigator never
// disagree.
type current struct {
	level *world.Level
	nav   *navigation.Navigator
}

// Session is one player's run through a chain of levels.
type Session struct {
	mu          sync.Mutex
	cur         *current
	source      LevelSource
	transitions *gamedata.TransitionTable
	genOpts     world.Options
	seed        int64
}

// NewSession creates a session. Generated levels use opts and seeds counting
// up from seed; a zero seed starts from the clock.
func NewSession(source LevelSource, transitions *gamedata.TransitionTable, opts world.Options, seed int64) *Session {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		source:      source,
		transitions: transitions,
		genOpts:     opts,
		seed:        seed,
	}
}

// Load replaces the current level with a map from the level source.
func (s *Session) Load(ctx context.Context, id string) (View, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.load")
	defer span.End()
	span.SetAttributes(attribute.String("map.id", id))

	level, err := s.source.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.installLocked(level); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return View{}, err
	}
	return s.viewLocked(), nil
}

// LoadLevel replaces the current level with an already validated one.
func (s *Session) LoadLevel(level *world.Level) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.installLocked(level); err != nil {
		return View{}, err
	}
	return s.viewLocked(), nil
}

// Generate builds a fresh level and makes it current.
func (s *Session) Generate(ctx context.Context, opts world.Options, seed int64) (View, error) {
	cfg, err := world.Generate(ctx, opts, seed)
	if err != nil {
		return View{}, err
	}
	level, _, err := world.NewLevel(cfg)
	if err != nil {
		return View{}, err
	}
	return s.LoadLevel(level)
}

// GenerateNext builds a level from the session's options and next seed.
func (s *Session) GenerateNext(ctx context.Context) (View, error) {
	return s.Generate(ctx, s.genOpts, s.nextSeed())
}

func (s *Session) nextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := s.seed
	s.seed++
	return seed
}

// installLocked starts navigation on level, stamping the merchant if the
// map names one.
func (s *Session) installLocked(level *world.Level) error {
	nav := navigation.New(level)
	if md := level.Config.Metadata; md != nil && md.MerchantPosition != nil {
		stamped, err := stampMerchant(level, nav.State(), *md.MerchantPosition)
		if err != nil {
			return err
		}
		level, nav = stamped.level, stamped.nav
	}
	s.cur = &current{level: level, nav: nav}

	logger.Info("level entered",
		"id", level.Config.ID,
		"size", fmt.Sprintf("%dx%d", level.Config.Width, level.Config.Height),
		"start", level.Config.StartPosition.String(),
		"facing", level.Config.StartDirection.String(),
	)
	return nil
}

// StampMerchant turns pos into a dead end holding the merchant. The
// player's state carries over unchanged.
func (s *Session) StampMerchant(pos world.Position) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return View{}, ErrNoLevel
	}
	stamped, err := stampMerchant(s.cur.level, s.cur.nav.State(), pos)
	if err != nil {
		return View{}, err
	}
	s.cur = stamped
	return s.viewLocked(), nil
}

func stampMerchant(level *world.Level, state navigation.State, pos world.Position) (*current, error) {
	if t, ok := level.TileAt(pos.X, pos.Y); !ok || !t.IsWalkable() {
		return nil, fmt.Errorf("merchant position %s is not walkable on map %q", pos, level.Config.ID)
	}
	stamped := level.WithTile(pos, world.DeadEnd)
	md := world.Metadata{}
	if stamped.Config.Metadata != nil {
		md = *stamped.Config.Metadata
	}
	md.MerchantPosition = &world.Position{X: pos.X, Y: pos.Y}
	stamped.Config.Metadata = &md

	nav, err := navigation.NewAt(stamped, state)
	if err != nil {
		return nil, err
	}
	return &current{level: stamped, nav: nav}, nil
}

// MoveForward steps the player one tile ahead.
func (s *Session) MoveForward() (navigation.Result, error) {
	return s.act(func(n *navigation.Navigator) navigation.Result { return n.MoveForward() })
}

// Reverse turns the player around in place.
func (s *Session) Reverse() (navigation.Result, error) {
	return s.act(func(n *navigation.Navigator) navigation.Result { return n.Reverse() })
}

// Turn rotates the player left or right.
func (s *Session) Turn(dir world.TurnDir) (navigation.Result, error) {
	return s.act(func(n *navigation.Navigator) navigation.Result { return n.Turn(dir) })
}

func (s *Session) act(fn func(*navigation.Navigator) navigation.Result) (navigation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return navigation.Result{}, ErrNoLevel
	}
	res := fn(s.cur.nav)
	if !res.OK {
		logger.Debug("move refused",
			"outcome", string(res.Outcome),
			"position", res.State.Position.String(),
			"facing", res.State.Facing.String(),
		)
	}
	return res, nil
}

// Use follows the door or stairs under the player to the next level.
func (s *Session) Use(ctx context.Context) (View, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.transition")
	defer span.End()

	s.mu.Lock()
	if s.cur == nil {
		s.mu.Unlock()
		return View{}, ErrNoLevel
	}
	mapID := s.cur.level.Config.ID
	tile := s.cur.nav.CurrentTile()
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("map.from", mapID),
		attribute.String("tile", tile.String()),
	)

	if !tile.IsTransition() || s.transitions == nil {
		return View{}, ErrNoTransition
	}
	rule, ok := s.transitions.Target(mapID, tile)
	if !ok {
		return View{}, ErrNoTransition
	}

	var (
		view View
		err  error
	)
	if rule.Generate {
		view, err = s.GenerateNext(ctx)
	} else {
		view, err = s.Load(ctx, rule.To)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("transition failed", "from", mapID, "tile", tile.String(), "error", err)
		return View{}, err
	}

	span.SetAttributes(attribute.String("map.to", view.Level.Config.ID))
	logger.Info("transition", "from", mapID, "tile", tile.String(), "to", view.Level.Config.ID)
	return view, nil
}

// View returns a snapshot of the current level and player.
func (s *Session) View() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return View{}, false
	}
	return s.viewLocked(), true
}

// CurrentTile returns the tile under the player.
func (s *Session) CurrentTile() (world.TileType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return world.Wall, false
	}
	return s.cur.nav.CurrentTile(), true
}

func (s *Session) viewLocked() View {
	nav := s.cur.nav
	return View{
		Level:      s.cur.level,
		State:      nav.State(),
		Projection: nav.Projection(),
		Tile:       nav.CurrentTile(),
		Visuals:    nav.Visuals(),
	}
}
