package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/database"
)

var testTokens = TokenService{
	Secret:   []byte("test-secret"),
	Issuer:   "bookshelf-test",
	Duration: 7 * 24 * time.Hour,
}

func TestTokenService_SignAndParse(t *testing.T) {
	u := &User{ID: "u-1", Username: "alice"}

	tok, exp, err := testTokens.Sign(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := testTokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "bookshelf-test", claims.Issuer)
}

func TestTokenService_Rejects(t *testing.T) {
	u := &User{ID: "u-1", Username: "alice"}

	tok, _, err := testTokens.Sign(u)
	require.NoError(t, err)

	other := testTokens
	other.Secret = []byte("another-secret")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	expired := testTokens
	expired.Duration = -time.Minute
	old, _, err := expired.Sign(u)
	require.NoError(t, err)
	_, err = testTokens.Parse(old)
	assert.Error(t, err)

	// no exp claim
	bare, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1"}).SignedString(testTokens.Secret)
	require.NoError(t, err)
	_, err = testTokens.Parse(bare)
	assert.Error(t, err)

	_, err = testTokens.Parse("not.a.token")
	assert.Error(t, err)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewHandle(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	t.Cleanup(func() { _ = store.Close() })

	r := gin.New()
	NewHandler(NewRepo(store), testTokens).RegisterRoutes(r.Group("/auth"))

	protected := r.Group("/private", AuthMiddleware(testTokens))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": MustGetClaims(c).Username})
	})
	return r
}

func call(t *testing.T, r http.Handler, method, path, token string, body any) (int, envelope) {
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

func TestRegisterLoginVerify(t *testing.T) {
	r := newRouter(t)
	creds := map[string]string{"username": "alice", "password": "hunter22"}

	code, env := call(t, r, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var reg struct {
		User userResp `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "alice", reg.User.Username)
	assert.NotEmpty(t, reg.User.ID)

	code, env = call(t, r, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username already exists", env.Error)

	code, env = call(t, r, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code, env.Error)
	var login struct {
		Token     string   `json:"token"`
		ExpiresAt string   `json:"expiresAt"`
		User      userResp `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, reg.User.ID, login.User.ID)

	code, env = call(t, r, http.MethodGet, "/auth/verify", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user":{"userId":"`+reg.User.ID+`","username":"alice"}}`, string(env.Data))

	code, env = call(t, r, http.MethodGet, "/private/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"alice"`, string(env.Data))
}

func TestLogin_BadCredentials(t *testing.T) {
	r := newRouter(t)
	_, _ = call(t, r, http.MethodPost, "/auth/register", "", map[string]string{"username": "alice", "password": "hunter22"})

	code, env := call(t, r, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Error)

	code, env = call(t, r, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Error)
}

func TestRegister_Validation(t *testing.T) {
	r := newRouter(t)

	code, _ := call(t, r, http.MethodPost, "/auth/register", "", map[string]string{"username": "al", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, r, http.MethodPost, "/auth/register", "", map[string]string{"username": "alice", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := call(t, r, http.MethodPost, "/auth/register", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username and password required", env.Error)
}

func TestVerifyAndMiddleware_RejectMissingOrBadToken(t *testing.T) {
	r := newRouter(t)

	code, env := call(t, r, http.MethodGet, "/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", env.Error)

	code, env = call(t, r, http.MethodGet, "/auth/verify", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", env.Error)

	code, env = call(t, r, http.MethodGet, "/private/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}
