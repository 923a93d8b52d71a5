package characters

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"charhub/internal/rickmorty"
	"charhub/internal/sync"
	"charhub/pkg/models"
)

// Upstream lists characters from the remote API.
type Upstream interface {
	ListCharacters(ctx context.Context, f rickmorty.Filter) (json.RawMessage, error)
}

// Publisher receives change events for the scratch list.
type Publisher interface {
	Publish(ev sync.CharacterEvent)
}

type Handler struct {
	Store    *Store
	Upstream Upstream
	Events   Publisher
	Log      logrus.FieldLogger
}

func NewHandler(store *Store, upstream Upstream, events Publisher, log logrus.FieldLogger) *Handler {
	return &Handler{Store: store, Upstream: upstream, Events: events, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/characters", h.filter)     // GET /api/characters
	rg.GET("/personajes", h.list)       // GET /api/personajes
	rg.POST("/personajes", h.create)    // POST /api/personajes
	rg.PUT("/personajes/:id", h.update) // PUT /api/personajes/:id
}

func (h *Handler) filter(c *gin.Context) {
	f := rickmorty.Filter{
		Status:  c.Query("status"),
		Species: c.Query("species"),
		Gender:  c.Query("gender"),
	}

	results, err := h.Upstream.ListCharacters(c.Request.Context(), f)
	if err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"status":  f.Status,
			"species": f.Species,
			"gender":  f.Gender,
		}).Error("upstream character listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "failed to fetch characters",
			"error":   err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", results)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.List())
}

func (h *Handler) create(c *gin.Context) {
	req, err := bindPatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !normalizePatchStatus(&req) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: Alive, Dead, unknown"})
		return
	}

	created := h.Store.Create(req)
	h.Log.WithField("character_id", created.ID).Info("character created")
	h.publish(sync.EventCreated, created)

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) update(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	req, err := bindPatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !normalizePatchStatus(&req) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: Alive, Dead, unknown"})
		return
	}

	updated, ok := h.Store.Update(id, req)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}

	h.Log.WithField("character_id", updated.ID).Info("character updated")
	h.publish(sync.EventUpdated, updated)

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) publish(typ string, ch models.Character) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(sync.CharacterEvent{
		Type:      typ,
		Character: ch,
		At:        time.Now().UTC(),
	})
}

// bindPatch decodes the request body. An empty body is an empty patch.
func bindPatch(c *gin.Context) (models.CharacterPatch, error) {
	var req models.CharacterPatch
	if c.Request.Body == nil {
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// normalizePatchStatus canonicalises the status in place. Blank values are
// stored trimmed. It reports false when the value is not a known status.
func normalizePatchStatus(p *models.CharacterPatch) bool {
	if p.Status == nil {
		return true
	}
	trimmed := strings.TrimSpace(*p.Status)
	if trimmed == "" {
		p.Status = &trimmed
		return true
	}
	s := models.NormalizeStatus(trimmed)
	if s == "" {
		return false
	}
	p.Status = &s
	return true
}
