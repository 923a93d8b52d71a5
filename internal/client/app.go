package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"charhub/pkg/models"
)

// ErrStale is returned when a filter response arrives after a newer one has
// already been rendered.
var ErrStale = errors.New("filter response superseded by a newer submission")

// Searcher runs filter queries against the remote character listing.
type Searcher interface {
	Characters(ctx context.Context, f Filter) ([]models.Character, error)
}

// App is the client state: the rendered filter view plus the repository that
// create/update submissions write to.
type App struct {
	Search Searcher
	Repo   Repository
	Log    logrus.FieldLogger

	issued atomic.Uint64

	mu      sync.Mutex
	applied uint64
	view    []models.Character
}

func NewApp(search Searcher, repo Repository, log logrus.FieldLogger) *App {
	return &App{Search: search, Repo: repo, Log: log}
}

// View returns a copy of the currently rendered results.
func (a *App) View() []models.Character {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Character, len(a.view))
	copy(out, a.view)
	return out
}

// FilterSubmit fetches the characters matching f and replaces the view with
// them. On failure the previous view stays in place. A response is only
// rendered if no later submission has been rendered first.
func (a *App) FilterSubmit(ctx context.Context, f Filter) error {
	seq := a.issued.Add(1)

	results, err := a.Search.Characters(ctx, f)
	if err != nil {
		a.Log.WithError(err).Error("filter request failed")
		return fmt.Errorf("filter characters: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq < a.applied {
		a.Log.WithField("seq", seq).Debug("dropping stale filter response")
		return ErrStale
	}
	a.applied = seq
	if results == nil {
		results = []models.Character{}
	}
	a.view = results
	return nil
}

// CreateSubmit stores a new character and returns the confirmation message.
func (a *App) CreateSubmit(ctx context.Context, f Fields) (models.Character, string, error) {
	created, err := a.Repo.Create(ctx, f)
	if err != nil {
		return models.Character{}, "", fmt.Errorf("create character: %w", err)
	}
	return created, "character created: " + toJSON(created), nil
}

// UpdateSubmit overwrites the character whose id is rawID. An unknown id
// yields ErrNotFound together with a "not found" message.
func (a *App) UpdateSubmit(ctx context.Context, rawID string, f Fields) (models.Character, string, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return models.Character{}, err.Error(), err
	}

	updated, err := a.Repo.Update(ctx, id, f)
	if errors.Is(err, ErrNotFound) {
		return models.Character{}, ErrNotFound.Error(), ErrNotFound
	}
	if err != nil {
		return models.Character{}, "", fmt.Errorf("update character: %w", err)
	}
	return updated, "character updated: " + toJSON(updated), nil
}

func toJSON(c models.Character) string {
	b, _ := json.Marshal(c)
	return string(b)
}
