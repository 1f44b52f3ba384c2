package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookshelf/internal/apperr"
	"bookshelf/internal/respond"
)

type Handler struct {
	Repo   *Repo
	Tokens TokenService
}

func NewHandler(repo *Repo, tokens TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/verify", h.verify)
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResp struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respond.Fail(c, apperr.Validation("Username and password required"))
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		respond.Fail(c, apperr.Validation("username must be 3-50 chars"))
		return
	}
	// bcrypt ignores input past 72 bytes
	if len(req.Password) < 6 || len(req.Password) > 72 {
		respond.Fail(c, apperr.Validation("password must be 6-72 chars"))
		return
	}

	ctx := c.Request.Context()
	if u, err := h.Repo.GetByUsername(ctx, req.Username); err != nil {
		respond.Fail(c, apperr.Store("Failed to register user", err))
		return
	} else if u != nil {
		respond.Fail(c, apperr.Conflict("Username already exists"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to register user", err))
		return
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			respond.Fail(c, apperr.Conflict("Username already exists"))
			return
		}
		respond.Fail(c, apperr.Store("Failed to register user", err))
		return
	}

	respond.Created(c, gin.H{"user": userResp{ID: u.ID, Username: u.Username}})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Fail(c, apperr.Validation("Username and password required"))
		return
	}

	u, err := h.Repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to log in", err))
		return
	}
	if u == nil {
		// don't reveal which part failed
		respond.Fail(c, apperr.Auth("Invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		respond.Fail(c, apperr.Auth("Invalid credentials"))
		return
	}

	token, exp, err := h.Tokens.Sign(u)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to log in", err))
		return
	}

	respond.OK(c, gin.H{
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
		"user":      userResp{ID: u.ID, Username: u.Username},
	})
}

func (h *Handler) verify(c *gin.Context) {
	claims, err := bearerClaims(c, h.Tokens)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"user": gin.H{"userId": claims.UserID, "username": claims.Username},
	})
}
