package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magazine-catalog/internal/config"
	"magazine-catalog/internal/testutil"
	"magazine-catalog/pkg/container"
	"magazine-catalog/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App: config.AppConfig{Environment: "test"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "magazine-catalog", TTL: time.Hour},
	}
	c := container.New(cfg, testutil.NewGateway(t), nil)

	token, err := c.JWTManager.GenerateAccessToken("tester", jwt.RoleEditor)
	require.NoError(t, err)

	return &apiClient{t: t, router: SetupRouter(c), token: token}
}

func (a *apiClient) do(method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *apiClient) create(path string, body any) int64 {
	a.t.Helper()
	w, env := a.do(http.MethodPost, path, body, a.token)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w, env := api.do(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var health struct {
		Status string `json:"status"`
		Driver string `json:"driver"`
		Pool   struct {
			InUse   int `json:"in_use"`
			MaxOpen int `json:"max_open"`
		} `json:"pool"`
		AvgWait string `json:"avg_wait"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "sqlite", health.Driver)
	assert.Equal(t, 1, health.Pool.MaxOpen)
	assert.Zero(t, health.Pool.InUse)
	assert.Equal(t, "0s", health.AvgWait)
}

func TestScenarioOverHTTP(t *testing.T) {
	api := newAPI(t)

	magID := api.create("/api/v1/magazines", map[string]string{"name": "Tech Weekly", "category": "Tech"})
	authorID := api.create("/api/v1/authors", map[string]string{"name": "Asha"})

	w, _ := api.do(http.MethodGet, fmt.Sprintf("/api/v1/magazines/%d/article-titles", magID), nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, title := range []string{"Intro to Systems", "Deep Dive One", "Deep Dive Two"} {
		api.create("/api/v1/articles", map[string]any{
			"title": title, "content": "text", "author_id": authorID, "magazine_id": magID,
		})
	}

	w, env := api.do(http.MethodGet, fmt.Sprintf("/api/v1/magazines/%d/contributing-authors", magID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var authors []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &authors))
	require.Len(t, authors, 1)
	assert.Equal(t, "Asha", authors[0].Name)

	w, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/magazines/%d/article-titles", magID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var titles struct {
		Titles []string `json:"titles"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &titles))
	assert.Equal(t, []string{"Intro to Systems", "Deep Dive One", "Deep Dive Two"}, titles.Titles)
}

func TestMutationsRequireEditor(t *testing.T) {
	api := newAPI(t)
	body := map[string]string{"name": "Asha"}

	w, env := api.do(http.MethodPost, "/api/v1/authors", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/authors", body, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	reader, err := jwt.NewManager("test-secret", "magazine-catalog", time.Hour).GenerateAccessToken("reader", "reader")
	require.NoError(t, err)
	w, env = api.do(http.MethodPost, "/api/v1/authors", body, reader)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/authors", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorStatuses(t *testing.T) {
	api := newAPI(t)

	magID := api.create("/api/v1/magazines", map[string]string{"name": "Tech Weekly", "category": "Tech"})
	authorID := api.create("/api/v1/authors", map[string]string{"name": "Asha"})
	articleID := api.create("/api/v1/articles", map[string]any{
		"title": "Intro to Systems", "content": "text", "author_id": authorID, "magazine_id": magID,
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"range", http.MethodPost, "/api/v1/magazines", map[string]string{"name": "T", "category": "Tech"}, http.StatusBadRequest, "RANGE_VALIDATION_ERROR"},
		{"wrong json kind", http.MethodPost, "/api/v1/authors", `{"name": 42}`, http.StatusBadRequest, "TYPE_VALIDATION_ERROR"},
		{"unknown parent", http.MethodPost, "/api/v1/articles", map[string]any{"title": "Valid Title", "content": "x", "author_id": 999, "magazine_id": magID}, http.StatusBadRequest, "TYPE_VALIDATION_ERROR"},
		{"immutable title", http.MethodPatch, fmt.Sprintf("/api/v1/articles/%d", articleID), map[string]string{"title": "Another Title"}, http.StatusUnprocessableEntity, "IMMUTABLE_FIELD"},
		{"immutable author", http.MethodPatch, fmt.Sprintf("/api/v1/articles/%d", articleID), map[string]int64{"author_id": authorID}, http.StatusUnprocessableEntity, "IMMUTABLE_FIELD"},
		{"not found", http.MethodGet, "/api/v1/authors/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", http.MethodGet, "/api/v1/authors/abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"author has articles", http.MethodDelete, fmt.Sprintf("/api/v1/authors/%d", authorID), nil, http.StatusConflict, "REFERENCE_CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.do(tt.method, tt.path, tt.body, api.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestUpdateAndDeleteOverHTTP(t *testing.T) {
	api := newAPI(t)

	magID := api.create("/api/v1/magazines", map[string]string{"name": "Tech Weekly", "category": "Tech"})
	authorID := api.create("/api/v1/authors", map[string]string{"name": "Asha"})
	articleID := api.create("/api/v1/articles", map[string]any{
		"title": "Intro to Systems", "content": "text", "author_id": authorID, "magazine_id": magID,
	})

	w, _ := api.do(http.MethodPatch, fmt.Sprintf("/api/v1/articles/%d", articleID), map[string]string{"content": "new text"}, api.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := api.do(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", articleID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var article struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &article))
	assert.Equal(t, "new text", article.Content)

	w, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/v1/magazines/%d", magID), map[string]string{"name": "Tech Daily"}, api.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d/magazine", articleID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var mag struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mag))
	assert.Equal(t, "Tech Daily", mag.Name)

	w, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/articles/%d", articleID), nil, api.token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", articleID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/authors/%d", authorID), nil, api.token)
	assert.Equal(t, http.StatusOK, w.Code)
}
