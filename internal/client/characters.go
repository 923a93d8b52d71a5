package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"charhub/pkg/models"
)

// StorageKey is the single entry holding the persisted character list.
const StorageKey = "characters"

var (
	ErrNotFound  = errors.New("character not found")
	ErrInvalidID = errors.New("id must be an integer")
)

// SeedCharacters are written on first run.
var SeedCharacters = []models.Character{
	{ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male"},
	{ID: 2, Name: "Morty Smith", Status: "Alive", Species: "Human", Gender: "Male"},
}

// Fields are the editable form fields of a character.
type Fields struct {
	Name    string
	Status  string
	Species string
	Gender  string
	Image   string
}

func (f Fields) patch() models.CharacterPatch {
	return models.CharacterPatch{
		Name:    &f.Name,
		Status:  &f.Status,
		Species: &f.Species,
		Gender:  &f.Gender,
		Image:   &f.Image,
	}
}

// LocalList reads and writes the persisted character list.
type LocalList struct {
	Storage Storage
	Log     logrus.FieldLogger
	Now     func() time.Time
}

func NewLocalList(storage Storage, log logrus.FieldLogger) *LocalList {
	return &LocalList{Storage: storage, Log: log, Now: time.Now}
}

// Load returns the persisted list. A missing, unreadable or malformed entry
// yields an empty list.
func (l *LocalList) Load(ctx context.Context) []models.Character {
	list, err := l.load(ctx)
	if err != nil {
		l.Log.WithError(err).Warn("read persisted characters")
		return []models.Character{}
	}
	return list
}

// load is Load for callers that write afterwards: a failed read is returned
// instead of being mistaken for an empty list.
func (l *LocalList) load(ctx context.Context) ([]models.Character, error) {
	raw, ok, err := l.Storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read characters: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []models.Character{}, nil
	}

	var list []models.Character
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		l.Log.WithError(err).Warn("persisted characters are malformed, treating as empty")
		return []models.Character{}, nil
	}
	if list == nil {
		list = []models.Character{}
	}
	return list, nil
}

// Save overwrites the persisted list with a single write.
func (l *LocalList) Save(ctx context.Context, list []models.Character) error {
	if list == nil {
		list = []models.Character{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode characters: %w", err)
	}
	if err := l.Storage.SetItem(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("save characters: %w", err)
	}
	return nil
}

// Init seeds the list when nothing has been persisted yet. It reports
// whether seeding happened.
func (l *LocalList) Init(ctx context.Context) (bool, error) {
	list, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	if len(list) > 0 {
		return false, nil
	}
	seed := make([]models.Character, len(SeedCharacters))
	copy(seed, SeedCharacters)
	if err := l.Save(ctx, seed); err != nil {
		return false, err
	}
	return true, nil
}

// List implements Repository.
func (l *LocalList) List(ctx context.Context) ([]models.Character, error) {
	return l.load(ctx)
}

// Create appends a new record with a timestamp id.
func (l *LocalList) Create(ctx context.Context, f Fields) (models.Character, error) {
	list, err := l.load(ctx)
	if err != nil {
		return models.Character{}, err
	}

	c := f.patch().Apply(models.Character{ID: l.nextID(list)})
	list = append(list, c)
	if err := l.Save(ctx, list); err != nil {
		return models.Character{}, err
	}
	return c, nil
}

// Update replaces every field but the id of the record with the given id.
// The list is not written when the id is unknown.
func (l *LocalList) Update(ctx context.Context, id int64, f Fields) (models.Character, error) {
	list, err := l.load(ctx)
	if err != nil {
		return models.Character{}, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i] = f.patch().Apply(models.Character{ID: id})
		if err := l.Save(ctx, list); err != nil {
			return models.Character{}, err
		}
		return list[i], nil
	}
	return models.Character{}, ErrNotFound
}

// nextID is the current unix time in milliseconds, bumped past every id
// already in the list so two creates in the same millisecond still differ.
func (l *LocalList) nextID(list []models.Character) int64 {
	id := l.Now().UnixMilli()
	for _, c := range list {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}

// ParseID parses a user supplied id. Only a plain base-10 integer is accepted.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}
