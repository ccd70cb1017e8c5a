// Package server exposes the map registry over HTTP and runs play sessions
// over websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// DefaultMap is loaded when a client connects without naming a map.
const DefaultMap = "loop"

// Maps is the registry surface the server needs.
type Maps interface {
	game.LevelSource
	Put(ctx context.Context, cfg *world.MapConfig) error
	IDs(ctx context.Context) ([]string, error)
}

// Server serves the map endpoints and websocket play sessions.
type Server struct {
	cfg         Config
	maps        Maps
	transitions *gamedata.TransitionTable
	genOpts     world.Options
	router      *mux.Router
	active      atomic.Int64
}

// New creates a server. Generated levels, both from POST /generate and
// from stairs during play, use opts unless overridden per request.
func New(cfg Config, maps Maps, transitions *gamedata.TransitionTable, opts world.Options) *Server {
	s := &Server{
		cfg:         cfg,
		maps:        maps,
		transitions: transitions,
		genOpts:     opts,
	}

	r := mux.NewRouter()
	r.HandleFunc("/maps", s.handleListMaps).Methods(http.MethodGet)
	r.HandleFunc("/maps/{id}", s.handleGetMap).Methods(http.MethodGet)
	r.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocketUpgrade).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Active returns the number of open play sessions.
func (s *Server) Active() int64 {
	return s.active.Load()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("play server listening", "address", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("play server shutting down", "active_sessions", s.Active())
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	ids, err := s.maps.IDs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"maps": ids})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	level, err := s.maps.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, level.Config)
}

// handleGenerate builds a level from the server options, overridden by the
// seed, width and height query parameters, and stores it.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	opts := s.genOpts
	seed := time.Now().UnixNano()

	q := r.URL.Query()
	var err error
	if v := q.Get("seed"); v != "" {
		if seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("seed must be an integer"))
			return
		}
	}
	for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		if v := q.Get(name); v != "" {
			if *dst, err = strconv.Atoi(v); err != nil {
				writeError(w, http.StatusBadRequest, errors.New(name+" must be an integer"))
				return
			}
		}
	}

	cfg, err := world.Generate(r.Context(), opts, seed)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := s.maps.Put(r.Context(), cfg); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	logger.Info("map generated", "id", cfg.ID, "seed", seed, "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusCreated, cfg)
}

// handleWebSocketUpgrade loads the requested map, then upgrades the
// connection and plays it. The handler goroutine owns the session, so
// actions from one client are applied strictly one at a time.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("map")
	if mapID == "" {
		mapID = DefaultMap
	}

	sess := game.NewSession(s.maps, s.transitions, s.genOpts, 0)
	view, err := sess.Load(r.Context(), mapID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	s.active.Add(1)
	defer s.active.Add(-1)

	logger.Info("client connected", "session", id, "map", mapID, "remote_addr", r.RemoteAddr)
	s.play(r.Context(), conn, id, sess, view)
	logger.Info("client disconnected", "session", id)
}

// play answers client requests until the connection closes.
func (s *Server) play(ctx context.Context, conn *websocket.Conn, id string, sess *game.Session, view game.View) {
	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	if err := s.send(conn, newStateMessage(id, true, OutcomeEntered, view)); err != nil {
		return
	}

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warning("websocket read failed", "session", id, "error", err)
			}
			if isMalformed(err) {
				if s.send(conn, newErrorMessage("malformed request")) == nil {
					continue
				}
			}
			return
		}

		if err := s.send(conn, s.dispatch(ctx, id, sess, req)); err != nil {
			return
		}
	}
}

// isMalformed reports whether a read failed on the message body rather than
// the connection.
func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// dispatch applies one request and builds the reply.
func (s *Server) dispatch(ctx context.Context, id string, sess *game.Session, req Request) any {
	var (
		res navigation.Result
		err error
	)
	switch req.Action {
	case ActionLook:
		view, ok := sess.View()
		if !ok {
			return newErrorMessage(game.ErrNoLevel.Error())
		}
		return newStateMessage(id, true, "", view)
	case ActionForward:
		res, err = sess.MoveForward()
	case ActionReverse:
		res, err = sess.Reverse()
	case ActionTurn:
		dir, perr := world.ParseTurnDir(req.Dir)
		if perr != nil {
			return newErrorMessage(perr.Error())
		}
		res, err = sess.Turn(dir)
	case ActionUse:
		view, err := sess.Use(ctx)
		if err != nil {
			return newErrorMessage(err.Error())
		}
		return newStateMessage(id, true, OutcomeEntered, view)
	default:
		return newErrorMessage("unknown action " + strconv.Quote(req.Action))
	}

	if err != nil {
		return newErrorMessage(err.Error())
	}
	view, _ := sess.View()
	return newStateMessage(id, res.OK, res.Outcome, view)
}

func (s *Server) send(conn *websocket.Conn, msg any) error {
	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return conn.WriteJSON(msg)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var structural *world.StructuralError
	switch {
	case errors.Is(err, registry.ErrMapNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, world.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.As(err, &structural):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, newErrorMessage(err.Error()))
}
