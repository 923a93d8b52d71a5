package sync

import (
	"time"

	"charhub/pkg/models"
)

const (
	EventCreated = "personaje.created"
	EventUpdated = "personaje.updated"
)

type CharacterEvent struct {
	Type      string           `json:"type"` // "personaje.created" or "personaje.updated"
	Character models.Character `json:"character"`
	At        time.Time        `json:"at"`
}
