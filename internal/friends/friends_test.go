package friends

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	store := database.NewHandle(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	t.Cleanup(func() { _ = store.Close() })
	return NewRepo(store)
}

func TestRepo_RoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	f := models.Friend{ID: uuid.NewString(), Name: "Alice", Email: "alice@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, f))

	got, err := repo.Get(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Empty(t, got.Phone)
	assert.True(t, got.CreatedAt.Equal(now))

	missing, err := repo.Get(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Phone = "555-0100"
	ok, err := repo.Update(ctx, *got)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_ListSearch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, f := range []models.Friend{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@work.org"},
		{Name: "Carol"},
	} {
		f.ID = uuid.NewString()
		f.CreatedAt, f.UpdatedAt = now, now
		require.NoError(t, repo.Create(ctx, f))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// same created_at: newest insert first
	assert.Equal(t, "Carol", all[0].Name)

	byEmail, err := repo.List(ctx, "WORK")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Bob", byEmail[0].Name)

	byName, err := repo.List(ctx, "car")
	require.NoError(t, err)
	require.Len(t, byName, 1)
}

func TestHandler_CreateRequiresName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newRepo(t)).RegisterRoutes(r.Group("/friends"))

	body, _ := json.Marshal(map[string]string{"email": "x@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/friends", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"name is required"}`, w.Body.String())
}

func TestHandler_CreateAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newRepo(t)).RegisterRoutes(r.Group("/friends"))

	body, _ := json.Marshal(map[string]string{"name": "Alice"})
	req := httptest.NewRequest(http.MethodPost, "/friends", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data models.Friend `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.ID)

	req = httptest.NewRequest(http.MethodDelete, "/friends/"+env.Data.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Friend deleted successfully"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/friends/"+env.Data.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
