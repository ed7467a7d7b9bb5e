package rest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrogames/application/ports/mocks"
	"retrogames/application/services"
	"retrogames/domain/catalog"
	"retrogames/interfaces/http/rest/handlers"
	"retrogames/interfaces/http/rest/middleware"
	"retrogames/pkg/auth"
)

const testKid = "test-key"

type testAPI struct {
	handler      http.Handler
	key          *rsa.PrivateKey
	catalog      *mocks.MemoryCatalog
	translations *mocks.MemoryTranslations
	translator   *mocks.PrefixTranslator
}

func newTestAPI(t *testing.T, seed ...catalog.RetroGame) *testAPI {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(auth.KeySet{Keys: []auth.JSONWebKey{auth.NewRSAJSONWebKey(testKid, &key.PublicKey)}})
	}))
	t.Cleanup(jwks.Close)

	logger := zap.NewNop()
	verifier := auth.NewTokenVerifier(auth.NewHTTPKeySetFetcher(jwks.Client(), time.Second), auth.VerifierConfig{
		KeySetURL: jwks.URL,
	})

	api := &testAPI{
		key:          key,
		catalog:      mocks.NewMemoryCatalog(seed...),
		translations: mocks.NewMemoryTranslations(),
		translator:   &mocks.PrefixTranslator{},
	}

	catalogService := services.NewCatalogService(api.catalog, nil, logger)
	cache := services.NewTranslationCache(api.translations, api.translator, nil, nil, logger, services.TranslationCacheConfig{
		SourceLanguage: "en",
		ExcludedFields: []string{"cover_art_path", "release_date"},
	})

	router := NewRouter(
		handlers.NewRetroGameHandler(catalogService, cache, logger),
		middleware.NewAuthenticator(auth.NewDecisionEngine(verifier), false, nil, logger),
		nil,
		logger,
	)
	api.handler = router.Setup()
	return api
}

func (a *testAPI) token(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	token.Header["kid"] = testKid
	signed, err := token.SignedString(a.key)
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(t *testing.T, method, path, cookie string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type listResponse struct {
	Data []map[string]interface{} `json:"data"`
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listResponse {
	t.Helper()
	var out listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func gameBody(platform, title string) map[string]interface{} {
	return map[string]interface{}{
		"id":             42,
		"title":          title,
		"genre":          []string{"Platformer"},
		"platform":       platform,
		"release_date":   "1990-11-21",
		"developer":      "Nintendo EAD",
		"publisher":      "Nintendo",
		"description":    "Jump on things",
		"cover_art_path": "/covers/smw.png",
		"screenshots":    []string{"/shots/smw-1.png"},
		"rating":         9.4,
		"popularity":     97.0,
		"multiplayer":    true,
		"average_score":  9.1,
		"review_count":   3210,
	}
}

func ownedGame(owner string) catalog.RetroGame {
	return catalog.RetroGame{
		ID:           1,
		Title:        "Chrono Trigger",
		Genre:        []string{"RPG"},
		Platform:     "SNES",
		ReleaseDate:  "1995-03-11",
		Developer:    "Square",
		Publisher:    "Square",
		Description:  "A journey through time",
		CoverArtPath: "/covers/ct.png",
		Rating:       9.6,
		ReviewCount:  900,
		UserID:       owner,
	}
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ListEmptyCatalog(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/retroGames", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestRouter_AddThenQuery(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/retroGames", "token="+api.token(t, "user-1", time.Hour), gameBody("SNES", "Super Mario World"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Retro Game added", decodeObject(t, rec)["message"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = api.do(t, http.MethodGet, "/retroGames/SNES", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "user-1", list.Data[0]["userId"])
	assert.Equal(t, "Super Mario World", list.Data[0]["title"])

	rec = api.do(t, http.MethodGet, "/retroGames", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec).Data, 1)
}

func TestRouter_Add(t *testing.T) {
	api := newTestAPI(t)

	t.Run("Should reject a missing cookie with 403", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/retroGames", "", gameBody("SNES", "F-Zero"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, middleware.MessageNoToken, decodeObject(t, rec)["message"])
	})

	t.Run("Should reject a token signed by another key with 401", func(t *testing.T) {
		other := newTestAPI(t)

		rec := api.do(t, http.MethodPost, "/retroGames", "token="+other.token(t, "user-1", time.Hour), gameBody("SNES", "F-Zero"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should reject an expired token with 401", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/retroGames", "token="+api.token(t, "user-1", -time.Minute), gameBody("SNES", "F-Zero"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, middleware.MessageExpiredToken, decodeObject(t, rec)["message"])
	})

	t.Run("Should reject a body that does not match the schema", func(t *testing.T) {
		body := gameBody("SNES", "F-Zero")
		body["rating"] = "excellent"

		rec := api.do(t, http.MethodPost, "/retroGames", "token="+api.token(t, "user-1", time.Hour), body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		out := decodeObject(t, rec)
		assert.Equal(t, "Incorrect type. Must match RetroGame schema", out["message"])
		assert.NotNil(t, out["schema"])
	})

	t.Run("Should not let the client choose the owner", func(t *testing.T) {
		body := gameBody("SNES", "F-Zero")
		body["userId"] = "someone-else"

		rec := api.do(t, http.MethodPost, "/retroGames", "token="+api.token(t, "user-1", time.Hour), body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Should reject a missing body", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/retroGames", "token="+api.token(t, "user-1", time.Hour), nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Missing request body", decodeObject(t, rec)["message"])
	})
}

func TestRouter_GetByPlatform(t *testing.T) {
	api := newTestAPI(t, ownedGame("user-1"), catalog.RetroGame{ID: 2, Platform: "SNES", Title: "EarthBound"})

	t.Run("Should report an unknown platform with 404", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/retroGames/UNKNOWN_PLATFORM", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeObject(t, rec)["message"], "UNKNOWN_PLATFORM")
	})

	t.Run("Should narrow by title", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/retroGames/SNES?title=EarthBound", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeList(t, rec)
		require.Len(t, list.Data, 1)
		assert.Equal(t, "EarthBound", list.Data[0]["title"])
	})

	t.Run("Should report an unknown title with 404", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/retroGames/SNES?title=Zelda", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should not set the cache header without a language", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/retroGames/SNES", "", nil)

		assert.Empty(t, rec.Header().Get(handlers.CacheHitHeader))
	})
}

func TestRouter_TranslationCache(t *testing.T) {
	api := newTestAPI(t, ownedGame("user-1"))
	path := "/retroGames/SNES?title=" + strings.ReplaceAll("Chrono Trigger", " ", "%20") + "&language=es"

	first := api.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "false", first.Header().Get(handlers.CacheHitHeader))

	second := api.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(handlers.CacheHitHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	list := decodeList(t, second)
	require.Len(t, list.Data, 1)
	item := list.Data[0]
	assert.Equal(t, "[ES] Chrono Trigger", item["title"])
	assert.Equal(t, "[ES] A journey through time", item["description"])
	assert.Equal(t, "/covers/ct.png", item["cover_art_path"])
	assert.Equal(t, "1995-03-11", item["release_date"])
	assert.Equal(t, "user-1", item["userId"])
	assert.Equal(t, 9.6, item["rating"])
	assert.Equal(t, float64(900), item["review_count"])
	assert.Equal(t, []interface{}{"RPG"}, item["genre"])
	assert.Equal(t, "es", item["lang"])

	assert.Equal(t, 1, api.translations.Puts())

	t.Run("Should default an empty language to en", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/retroGames/SNES?language=", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "en", decodeList(t, rec).Data[0]["lang"])
	})
}

func TestRouter_Replace(t *testing.T) {
	t.Run("Should reject a non owner with 401 regardless of payload", func(t *testing.T) {
		api := newTestAPI(t, ownedGame("user-b"))
		cookie := "token=" + api.token(t, "user-a", time.Hour)

		valid := gameBody("SNES", "Chrono Trigger")
		invalid := map[string]interface{}{"platform": "SNES", "title": "Chrono Trigger", "rating": "bad"}
		for _, body := range []interface{}{valid, invalid} {
			rec := api.do(t, http.MethodPut, "/retroGames", cookie, body)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Can only update a Retro Game that you have added yourself!", decodeObject(t, rec)["message"])
		}
	})

	t.Run("Should settle ownership before rejecting non string keys", func(t *testing.T) {
		game := ownedGame("user-b")
		game.Title = "1942"
		api := newTestAPI(t, game)
		cookie := "token=" + api.token(t, "user-a", time.Hour)

		rec := api.do(t, http.MethodPut, "/retroGames", cookie, `{"platform":"SNES","title":1942}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = api.do(t, http.MethodPut, "/retroGames", cookie, `{"platform":"SNES","title":["Chrono Trigger"]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should replace every attribute for the owner", func(t *testing.T) {
		api := newTestAPI(t, ownedGame("user-1"))
		body := gameBody("SNES", "Chrono Trigger")
		body["description"] = "Updated"

		rec := api.do(t, http.MethodPut, "/retroGames", "token="+api.token(t, "user-1", time.Hour), body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Retro Game updated", decodeObject(t, rec)["message"])

		rec = api.do(t, http.MethodGet, "/retroGames/SNES", "", nil)
		item := decodeList(t, rec).Data[0]
		assert.Equal(t, "Updated", item["description"])
		assert.Equal(t, "Nintendo", item["publisher"])
		assert.Equal(t, "user-1", item["userId"])
	})

	t.Run("Should report a missing target with 404", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(t, http.MethodPut, "/retroGames", "token="+api.token(t, "user-1", time.Hour), gameBody("NES", "Contra"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Game to update not found", decodeObject(t, rec)["message"])
	})

	t.Run("Should reject a missing body with 400", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(t, http.MethodPut, "/retroGames", "token="+api.token(t, "user-1", time.Hour), nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should validate the owner's body against the schema", func(t *testing.T) {
		api := newTestAPI(t, ownedGame("user-1"))
		body := gameBody("SNES", "Chrono Trigger")
		delete(body, "developer")

		rec := api.do(t, http.MethodPut, "/retroGames", "token="+api.token(t, "user-1", time.Hour), body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Incorrect type. Must match RetroGame schema", decodeObject(t, rec)["message"])
	})
}
