package planner

import "github.com/nfrund/voyage/internal/pubsub"

// Changed is published after every local mutation of the collection so views
// re-render without polling.
type Changed struct {
	Reason     string `json:"reason"`
	Generation uint64 `json:"generation"`
	Stats      Stats  `json:"stats"`
}

// ChangedEvent is the typed event carrying collection changes.
var ChangedEvent = pubsub.NewEvent[Changed]("destinations.changed")
