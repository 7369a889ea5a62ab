package session

import "github.com/nfrund/voyage/internal/pubsub"

// Changed is published on every session transition so views can re-render.
type Changed struct {
	State    State  `json:"state"`
	Username string `json:"username,omitempty"`
}

// ChangedEvent is the typed event carrying session transitions.
var ChangedEvent = pubsub.NewEvent[Changed]("session.changed")
