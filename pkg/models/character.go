package models

import "strings"

// Character is a single character record. The same shape is used by the
// client's persisted list, the server's scratch list and the cards rendered
// from upstream results.
type Character struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Gender  string `json:"gender"`
	Image   string `json:"image,omitempty"`
}

// CharacterPatch carries a partial update. Nil fields keep the existing value.
type CharacterPatch struct {
	Name    *string `json:"name"`
	Status  *string `json:"status"`
	Species *string `json:"species"`
	Gender  *string `json:"gender"`
	Image   *string `json:"image"`
}

// Apply returns c with every non-nil patch field copied over it.
func (p CharacterPatch) Apply(c Character) Character {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Species != nil {
		c.Species = *p.Species
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	return c
}

// Status values used by the public API.
const (
	StatusAlive   = "Alive"
	StatusDead    = "Dead"
	StatusUnknown = "unknown"
)

// NormalizeStatus maps user input onto one of the canonical status values.
// It returns "" for anything it does not recognise.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alive":
		return StatusAlive
	case "dead":
		return StatusDead
	case "unknown":
		return StatusUnknown
	default:
		return ""
	}
}
