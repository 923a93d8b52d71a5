package rickmorty

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Mirror serves a local copy of the character listing endpoint so the
// proxy can run without reaching the public API.
type Mirror struct {
	characters []map[string]any
}

// LoadMirror reads a JSON file holding either a bare array of characters or
// a page in the public API's {"info": ..., "results": [...]} form.
func LoadMirror(path string) (*Mirror, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseMirror(b)
}

func ParseMirror(b []byte) (*Mirror, error) {
	var page struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(b, &page); err == nil && page.Results != nil {
		return &Mirror{characters: page.Results}, nil
	}

	var list []map[string]any
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("mirror data invalid JSON: %w", err)
	}
	return &Mirror{characters: list}, nil
}

func (m *Mirror) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/character", m.list) // GET /api/character
}

// Match returns the characters whose status, species and gender equal the
// non-empty filters, ignoring case.
func (m *Mirror) Match(f Filter) []map[string]any {
	out := make([]map[string]any, 0, len(m.characters))
	for _, ch := range m.characters {
		if !fieldMatches(ch, "status", f.Status) ||
			!fieldMatches(ch, "species", f.Species) ||
			!fieldMatches(ch, "gender", f.Gender) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (m *Mirror) list(c *gin.Context) {
	f := Filter{
		Status:  strings.TrimSpace(c.Query("status")),
		Species: strings.TrimSpace(c.Query("species")),
		Gender:  strings.TrimSpace(c.Query("gender")),
	}

	results := m.Match(f)
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is nothing here"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"info": gin.H{
			"count": len(results),
			"pages": 1,
			"next":  nil,
			"prev":  nil,
		},
		"results": results,
	})
}

func fieldMatches(ch map[string]any, field, want string) bool {
	if want == "" {
		return true
	}
	got, _ := ch[field].(string)
	return strings.EqualFold(got, want)
}
