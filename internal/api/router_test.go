package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/database"
	"bookshelf/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

var fixedNow = time.Date(2024, time.April, 20, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, authRequired bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewHandle(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	t.Cleanup(func() { _ = store.Close() })

	return NewRouter(Deps{
		Store: store,
		Auth: utils.AuthConfig{
			JWTSecret:   "test-secret",
			JWTIssuer:   "bookshelf",
			JWTDuration: time.Hour,
			Required:    authRequired,
		},
		Server: utils.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return fixedNow },
	})
}

func send(t *testing.T, r http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func dataID(t *testing.T, env envelope) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

func TestLendingLifecycle(t *testing.T) {
	r := newTestRouter(t, false)

	code, env := send(t, r, http.MethodPost, "/books", "", map[string]string{"title": "Dune", "author": "Herbert"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	bookID := dataID(t, env)

	code, env = send(t, r, http.MethodPost, "/friends", "", map[string]string{"name": "Alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	friendID := dataID(t, env)

	code, env = send(t, r, http.MethodPost, "/lendings", "", map[string]string{
		"bookId":             bookID,
		"friendId":           friendID,
		"expectedReturnDate": "2024-04-10",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	lendingID := dataID(t, env)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, true, created["overdue"])
	book, ok := created["bookId"].(map[string]any)
	require.True(t, ok, "bookId should be the joined book")
	assert.Equal(t, "Dune", book["title"])
	friend, ok := created["friendId"].(map[string]any)
	require.True(t, ok, "friendId should be the joined friend")
	assert.Equal(t, "Alice", friend["name"])

	code, env = send(t, r, http.MethodGet, "/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"lent"`)

	code, env = send(t, r, http.MethodPost, "/lendings", "", map[string]string{"bookId": bookID, "friendId": friendID})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = send(t, r, http.MethodGet, "/dashboard/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	var dash struct {
		Books struct {
			Total   int `json:"total"`
			Lent    int `json:"lent"`
			Overdue int `json:"overdue"`
		} `json:"books"`
		Lendings struct {
			Active  int `json:"active"`
			Overdue int `json:"overdue"`
		} `json:"lendings"`
		ChartData struct {
			Labels []string `json:"labels"`
			Values []int    `json:"values"`
		} `json:"chartData"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.Equal(t, 1, dash.Books.Total)
	assert.Equal(t, 1, dash.Books.Lent)
	assert.Equal(t, 1, dash.Books.Overdue)
	assert.Equal(t, 1, dash.Lendings.Active)
	assert.Equal(t, 1, dash.Lendings.Overdue)
	require.Len(t, dash.ChartData.Labels, 12)
	require.Len(t, dash.ChartData.Values, 12)
	assert.Equal(t, 1, dash.ChartData.Values[3])

	code, env = send(t, r, http.MethodPut, "/lendings/"+lendingID, "", map[string]string{"status": "returned", "returnCondition": "good"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"status":"returned"`)

	code, env = send(t, r, http.MethodGet, "/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"available"`)
	assert.NotContains(t, string(env.Data), `"lentTo"`)

	code, env = send(t, r, http.MethodGet, "/lendings?status=returned", "", nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	code, env = send(t, r, http.MethodDelete, "/lendings/"+lendingID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Lending record deleted successfully", env.Message)
}

func TestBadInput(t *testing.T) {
	r := newTestRouter(t, false)

	code, env := send(t, r, http.MethodGet, "/lendings/123", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid lending ID", env.Error)

	code, env = send(t, r, http.MethodPost, "/lendings", "", map[string]string{"bookId": "x", "friendId": "y"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid book ID", env.Error)

	code, env = send(t, r, http.MethodPost, "/lendings", "", map[string]string{
		"bookId":   "6f1c1c1e-4d4a-4d1e-9a57-9d1c2a0c8f10",
		"friendId": "0b1f8a62-6a9e-4f63-8d5e-6c7a3f1e2b44",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Book not found", env.Error)

	req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"invalid json"}`, w.Body.String())
}

func TestAuthGate(t *testing.T) {
	r := newTestRouter(t, true)

	code, env := send(t, r, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", env.Error)

	code, env = send(t, r, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", env.Error)

	creds := map[string]string{"username": "alice", "password": "hunter22"}
	code, _ = send(t, r, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, code)

	code, env = send(t, r, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	code, env = send(t, r, http.MethodGet, "/books", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHealthAndReady(t *testing.T) {
	r := newTestRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"ok"`)
}
