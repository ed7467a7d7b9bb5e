package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"retrogames/application/services"
	"retrogames/domain/catalog"
	"retrogames/interfaces/http/rest/validation"
	"retrogames/pkg/auth"
	"retrogames/pkg/common"
	apperrors "retrogames/pkg/errors"
)

// CacheHitHeader tells clients whether a localized read was served from the
// translated store.
const CacheHitHeader = "did-cache-hit"

const (
	defaultLanguage    = "en"
	maxBodyBytes       = 1 << 20
	missingBodyMessage = "Missing request body"
)

// RetroGameHandler handles retro game catalog requests
type RetroGameHandler struct {
	catalog *services.CatalogService
	cache   *services.TranslationCache
	logger  *zap.Logger
}

// NewRetroGameHandler creates a new retro game handler
func NewRetroGameHandler(
	catalog *services.CatalogService,
	cache *services.TranslationCache,
	logger *zap.Logger,
) *RetroGameHandler {
	return &RetroGameHandler{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
	}
}

// ListRetroGames handles GET /retroGames
func (h *RetroGameHandler) ListRetroGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondData(w, http.StatusOK, games)
}

// GetByPlatform handles GET /retroGames/{platform}. A language query
// parameter, even an empty one, routes the read through the translation cache.
func (h *RetroGameHandler) GetByPlatform(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	query := r.URL.Query()

	var title *string
	if query.Has("title") {
		t := query.Get("title")
		title = &t
	}

	games, err := h.catalog.ByPlatform(r.Context(), platform, title)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if !query.Has("language") {
		common.RespondData(w, http.StatusOK, games)
		return
	}

	lang := strings.TrimSpace(query.Get("language"))
	if lang == "" {
		lang = defaultLanguage
	}

	localized, err := h.cache.LocalizeAll(r.Context(), games, lang)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]catalog.TranslatedRetroGame, 0, len(localized))
	for _, l := range localized {
		items = append(items, l.Item)
	}
	w.Header().Set(CacheHitHeader, strconv.FormatBool(catalog.AllHits(localized)))
	common.RespondData(w, http.StatusOK, items)
}

// AddRetroGame handles POST /retroGames
func (h *RetroGameHandler) AddRetroGame(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r, http.StatusInternalServerError)
	if !ok {
		return
	}

	game, err := validation.DecodeRetroGame(raw)
	if err != nil {
		h.respondSchemaError(w, err)
		return
	}

	if _, err := h.catalog.Add(r.Context(), subject(r), game); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondMessage(w, http.StatusCreated, "Retro Game added")
}

// ReplaceRetroGame handles PUT /retroGames. The target and its owner are
// checked before the body is validated against the schema.
func (h *RetroGameHandler) ReplaceRetroGame(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r, http.StatusBadRequest)
	if !ok {
		return
	}

	// Key attributes of any JSON type still locate the target, so ownership
	// is settled before the schema is.
	var key struct {
		Platform interface{} `json:"platform"`
		Title    interface{} `json:"title"`
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		h.respondSchemaError(w, &validation.SchemaError{Reason: err.Error(), Schema: validation.RetroGameSchema()})
		return
	}

	existing, err := h.catalog.OwnedRecord(r.Context(), subject(r), catalog.Key{
		Platform: keyString(key.Platform),
		Title:    keyString(key.Title),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	game, err := validation.DecodeRetroGame(raw)
	if err != nil {
		h.respondSchemaError(w, err)
		return
	}

	if _, err := h.catalog.Replace(r.Context(), *existing, game); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondMessage(w, http.StatusOK, "Retro Game updated")
}

// readBody returns the request body, answering with missingStatus when there
// is none.
func (h *RetroGameHandler) readBody(w http.ResponseWriter, r *http.Request, missingStatus int) ([]byte, bool) {
	if r.Body == nil {
		common.RespondMessage(w, missingStatus, missingBodyMessage)
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read request body", zap.Error(err))
		common.RespondMessage(w, missingStatus, missingBodyMessage)
		return nil, false
	}
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "null" {
		common.RespondMessage(w, missingStatus, missingBodyMessage)
		return nil, false
	}
	return raw, true
}

func (h *RetroGameHandler) respondSchemaError(w http.ResponseWriter, err error) {
	var schemaErr *validation.SchemaError
	if !errors.As(err, &schemaErr) {
		common.RespondError(w, err)
		return
	}
	h.logger.Debug("Rejected request body", zap.String("reason", schemaErr.Reason))
	common.RespondJSON(w, http.StatusInternalServerError, common.MessageResponse{
		Message: validation.MismatchMessage,
		Schema:  schemaErr.Schema,
	})
}

func (h *RetroGameHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !apperrors.IsClientError(err) {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	common.RespondError(w, err)
}

func subject(r *http.Request) string {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return ""
	}
	return user.UserID
}

// keyString renders a decoded key attribute the way it is stored.
func keyString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
