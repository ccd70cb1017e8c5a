package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := registry.NewJSONStore("")
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	reg := registry.New(gamedata.MustLoadMaps(), store)
	t.Cleanup(func() { reg.Close() })

	opts := world.DefaultOptions()
	opts.Width, opts.Height = 8, 8
	s := New(DefaultConfig(), reg, gamedata.MustLoadTransitionTable(), opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestListAndGetMaps(t *testing.T) {
	_, ts := newTestServer(t)

	var list struct {
		Maps []string `json:"maps"`
	}
	getJSON(t, ts.URL+"/maps", http.StatusOK, &list)
	if strings.Join(list.Maps, ",") != "cross,loop,spiral,stairwell" {
		t.Errorf("maps = %v", list.Maps)
	}

	var cfg world.MapConfig
	getJSON(t, ts.URL+"/maps/loop", http.StatusOK, &cfg)
	if cfg.ID != "loop" || cfg.StartDirection != world.East {
		t.Errorf("loop = %s start %s", cfg.ID, cfg.StartDirection)
	}

	var e ErrorMessage
	getJSON(t, ts.URL+"/maps/nowhere", http.StatusNotFound, &e)
	if e.Type != "error" || e.Message == "" {
		t.Errorf("error body = %+v", e)
	}
}

func TestGenerate(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/generate?seed=5&width=10&height=9", "", nil)
	if err != nil {
		t.Fatalf("POST /generate error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var cfg world.MapConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 9 {
		t.Errorf("generated %dx%d, want 10x9", cfg.Width, cfg.Height)
	}

	var stored world.MapConfig
	getJSON(t, ts.URL+"/maps/"+cfg.ID, http.StatusOK, &stored)
	if stored.Format() != cfg.Format() {
		t.Error("stored map differs from the generated one")
	}

	var list struct {
		Maps []string `json:"maps"`
	}
	getJSON(t, ts.URL+"/maps", http.StatusOK, &list)
	if last := list.Maps[len(list.Maps)-1]; last != cfg.ID {
		t.Errorf("maps = %v, want %s last", list.Maps, cfg.ID)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"seed=abc", http.StatusBadRequest},
		{"width=wide", http.StatusBadRequest},
		{"seed=1&width=2", http.StatusBadRequest},
		{"seed=1&width=3000&height=3000", http.StatusBadRequest},
		{"seed=1&height=129", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.URL+"/generate?"+tt.query, "", nil)
		if err != nil {
			t.Fatalf("POST error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("POST /generate?%s status = %d, want %d", tt.query, resp.StatusCode, tt.want)
		}
	}

	resp, err := http.Get(ts.URL + "/generate")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /generate status = %d, want 405", resp.StatusCode)
	}
}

// wireState mirrors StateMessage for decoding replies.
type wireState struct {
	Type    string              `json:"type"`
	Message string              `json:"message"`
	Session string              `json:"session"`
	OK      bool                `json:"ok"`
	Outcome navigation.Outcome  `json:"outcome"`
	MapID   string              `json:"mapId"`
	State   navigation.State    `json:"state"`
	Tile    string              `json:"tile"`
	Ahead   []string            `json:"ahead"`
	Visuals []navigation.Visual `json:"visuals"`
}

func dial(t *testing.T, ts *httptest.Server, mapID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?map=" + mapID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", mapID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, req *Request) wireState {
	t.Helper()
	if req != nil {
		if err := conn.WriteJSON(req); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wireState
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestWebSocketPlay(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "loop")

	hello := exchange(t, conn, nil)
	if hello.Type != "state" || hello.Outcome != OutcomeEntered || hello.MapID != "loop" {
		t.Fatalf("hello = %+v", hello)
	}
	if hello.Session == "" {
		t.Error("hello has no session id")
	}
	if hello.State.Position != (world.Position{X: 0, Y: 0}) || hello.State.Facing != world.East {
		t.Errorf("hello state = %+v", hello.State)
	}
	if len(hello.Ahead) != 8 || hello.Tile != "turn" {
		t.Errorf("hello ahead = %v tile = %s", hello.Ahead, hello.Tile)
	}

	moved := exchange(t, conn, &Request{Action: ActionForward})
	if !moved.OK || moved.Outcome != navigation.OutcomeMoved || moved.State.Position != (world.Position{X: 1, Y: 0}) {
		t.Errorf("forward = %+v", moved)
	}
	if moved.Session != hello.Session {
		t.Error("session id changed between messages")
	}

	rejected := exchange(t, conn, &Request{Action: ActionTurn, Dir: "L"})
	if rejected.OK || rejected.Outcome != navigation.OutcomeRejected {
		t.Errorf("turn into wall = %+v", rejected)
	}
	if rejected.State != moved.State {
		t.Errorf("rejected turn changed state to %+v", rejected.State)
	}

	reversed := exchange(t, conn, &Request{Action: ActionReverse})
	if !reversed.OK || reversed.State.Facing != world.West {
		t.Errorf("reverse = %+v", reversed)
	}

	look := exchange(t, conn, &Request{Action: ActionLook})
	if look.State != reversed.State {
		t.Errorf("look = %+v, want %+v", look.State, reversed.State)
	}

	for _, req := range []Request{
		{Action: ActionTurn, Dir: "up"},
		{Action: "jump"},
		{Action: ActionUse},
	} {
		if msg := exchange(t, conn, &req); msg.Type != "error" || msg.Message == "" {
			t.Errorf("%+v reply = %+v, want error", req, msg)
		}
	}
}

func TestWebSocketMalformedMessages(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "loop")
	hello := exchange(t, conn, nil)

	for _, raw := range []string{
		`{"action":5}`,
		`{"action":"turn","dir":["L"]}`,
		`{action}`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("WriteMessage(%s) error = %v", raw, err)
		}
		if msg := exchange(t, conn, nil); msg.Type != "error" || msg.Message != "malformed request" {
			t.Errorf("%s reply = %+v, want malformed request error", raw, msg)
		}
	}

	look := exchange(t, conn, &Request{Action: ActionLook})
	if look.Type != "state" || look.State != hello.State {
		t.Errorf("look after malformed messages = %+v", look)
	}
}

func TestWebSocketDoorTransition(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "cross")
	exchange(t, conn, nil)

	exchange(t, conn, &Request{Action: ActionTurn, Dir: "L"})
	var last wireState
	for i := 0; i < 3; i++ {
		last = exchange(t, conn, &Request{Action: ActionForward})
	}
	if last.Tile != "door" {
		t.Fatalf("standing on %s, want door", last.Tile)
	}

	entered := exchange(t, conn, &Request{Action: ActionUse})
	if entered.Type != "state" || entered.MapID != "spiral" || entered.Outcome != OutcomeEntered {
		t.Errorf("use = %+v", entered)
	}
}

func TestWebSocketRejections(t *testing.T) {
	_, ts := newTestServer(t)
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base+"?map=nowhere", nil)
	if err == nil {
		t.Fatal("Dial() to a missing map succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing map response = %v, want 404", resp)
	}

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(base, header)
	if err == nil {
		t.Fatal("Dial() from a foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign origin response = %v, want 403", resp)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin header", nil, "", "localhost:8080", true},
		{"same origin", nil, "http://localhost:8080", "localhost:8080", true},
		{"same origin trailing slash", nil, "http://localhost:8080/", "localhost:8080", true},
		{"cross origin", nil, "http://evil.example", "localhost:8080", false},
		{"wildcard", []string{"*"}, "http://evil.example", "localhost:8080", true},
		{"listed", []string{"https://crawl.example"}, "https://crawl.example", "localhost:8080", true},
		{"not listed", []string{"https://crawl.example"}, "http://localhost:8080", "localhost:8080", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{AllowedOrigins: tt.allowed}
			if got := cfg.IsOriginAllowed(tt.origin, tt.host); got != tt.want {
				t.Errorf("IsOriginAllowed(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}
