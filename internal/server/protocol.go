package server

import (
	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
)

// Client actions.
const (
	ActionLook    = "look"
	ActionForward = "forward"
	ActionReverse = "reverse"
	ActionTurn    = "turn"
	ActionUse     = "use"
)

// OutcomeEntered is reported after loading a level, on connect or through
// a door or stairs.
const OutcomeEntered navigation.Outcome = "entered"

// Request is one client message.
type Request struct {
	Action string `json:"action"`
	Dir    string `json:"dir,omitempty"`
}

// StateMessage reports the session after an action.
type StateMessage struct {
	Type    string              `json:"type"`
	Session string              `json:"session"`
	OK      bool                `json:"ok"`
	Outcome navigation.Outcome  `json:"outcome"`
	MapID   string              `json:"mapId"`
	State   navigation.State    `json:"state"`
	Tile    string              `json:"tile"`
	Ahead   []string            `json:"ahead"`
	Visuals []navigation.Visual `json:"visuals"`
}

// ErrorMessage reports a request the server could not apply.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: msg}
}

func newStateMessage(sessionID string, ok bool, outcome navigation.Outcome, view game.View) StateMessage {
	ahead := view.Projection.Ahead()
	names := make([]string, len(ahead))
	for i, t := range ahead {
		names[i] = t.String()
	}
	return StateMessage{
		Type:    "state",
		Session: sessionID,
		OK:      ok,
		Outcome: outcome,
		MapID:   view.Level.Config.ID,
		State:   view.State,
		Tile:    view.Tile.String(),
		Ahead:   names,
		Visuals: view.Visuals,
	}
}
