package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/ui"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// Game is the terminal client: one session drawn with tcell.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	session  *Session
	cfg      Config
	state    State
	message  string
	running  bool
}

// New creates a new game instance.
func New(cfg Config, session *Session, themes *gamedata.ThemeRegistry) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	renderer, err := ui.NewRenderer(screen, themes.Resolve(cfg.Theme))
	if err != nil {
		screen.Close()
		return nil, err
	}

	return &Game{
		screen:   screen,
		renderer: renderer,
		session:  session,
		cfg:      cfg,
		state:    StateExplore,
		running:  true,
	}, nil
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")

	// Initialize game (traced)
	initCtx, initSpan := tracer.Start(ctx, "game.init")
	var (
		view View
		err  error
	)
	if g.cfg.StartMap == "" {
		view, err = g.session.GenerateNext(initCtx)
	} else {
		view, err = g.session.Load(initCtx, g.cfg.StartMap)
	}
	if err != nil {
		initSpan.RecordError(err)
		initSpan.End()
		return fmt.Errorf("load start map: %w", err)
	}
	initSpan.SetAttributes(
		attribute.String("map.id", view.Level.Config.ID),
		attribute.String("theme", g.cfg.Theme),
	)
	initSpan.End()

	// Main game loop
	for g.running {
		g.render()
		g.handleInput(ctx)
	}
	return nil
}

func (g *Game) render() {
	view, ok := g.session.View()
	if !ok {
		g.renderer.Render(ui.Frame{Message: g.message})
		return
	}
	g.renderer.Render(ui.Frame{
		Level:   view.Level,
		State:   view.State,
		Ahead:   view.Ahead(),
		FullMap: g.state == StateMap,
		Message: g.message,
	})
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// Command is a player action decoded from a key.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdForward
	CmdReverse
	CmdTurnLeft
	CmdTurnRight
	CmdUse
	CmdGenerate
	CmdToggleMap
)

// KeyCommand maps a key event to a command. Arrows and WASD move.
func KeyCommand(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyUp:
		return CmdForward
	case tcell.KeyDown:
		return CmdReverse
	case tcell.KeyLeft:
		return CmdTurnLeft
	case tcell.KeyRight:
		return CmdTurnRight
	case tcell.KeyEnter:
		return CmdUse
	case tcell.KeyTab:
		return CmdToggleMap
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return CmdQuit
		case 'w', 'W':
			return CmdForward
		case 's', 'S':
			return CmdReverse
		case 'a', 'A':
			return CmdTurnLeft
		case 'd', 'D':
			return CmdTurnRight
		case 'e', 'E':
			return CmdUse
		case 'g', 'G':
			return CmdGenerate
		case 'm', 'M':
			return CmdToggleMap
		}
	}
	return CmdNone
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	cmd := KeyCommand(ev)
	if cmd == CmdQuit {
		g.running = false
		return
	}
	g.message = g.apply(ctx, cmd)
}

// apply runs a command against the session and returns the status message.
func (g *Game) apply(ctx context.Context, cmd Command) string {
	var (
		res navigation.Result
		err error
	)
	switch cmd {
	case CmdForward:
		res, err = g.session.MoveForward()
	case CmdReverse:
		res, err = g.session.Reverse()
	case CmdTurnLeft:
		res, err = g.session.Turn(world.Left)
	case CmdTurnRight:
		res, err = g.session.Turn(world.Right)
	case CmdToggleMap:
		g.state = g.state.Toggle()
		return ""
	case CmdUse:
		view, err := g.session.Use(ctx)
		if errors.Is(err, ErrNoTransition) {
			return "There is nothing to use here."
		}
		if err != nil {
			return fmt.Sprintf("The way is blocked: %v", err)
		}
		return fmt.Sprintf("You arrive in %s.", view.Level.Config.Name)
	case CmdGenerate:
		view, err := g.session.GenerateNext(ctx)
		if err != nil {
			logger.Error("generate failed", "error", err)
			return fmt.Sprintf("Generation failed: %v", err)
		}
		return fmt.Sprintf("A new dungeon: %s.", view.Level.Config.Name)
	default:
		return g.message
	}

	if err != nil {
		return err.Error()
	}
	return outcomeMessage(res)
}

func outcomeMessage(res navigation.Result) string {
	switch res.Outcome {
	case navigation.OutcomeBlocked:
		return "A wall blocks the way."
	case navigation.OutcomeRejected:
		return "You cannot turn into a wall."
	}
	return ""
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
