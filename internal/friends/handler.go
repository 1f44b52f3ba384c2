package friends

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookshelf/internal/apperr"
	"bookshelf/internal/respond"
	"bookshelf/pkg/models"
)

type Handler struct {
	Repo *Repo
	Now  func() time.Time
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.getByID)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.remove)
}

type friendReq struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (req friendReq) apply(f *models.Friend) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Name, req.Name)
	set(&f.Email, req.Email)
	set(&f.Phone, req.Phone)
	set(&f.Address, req.Address)
	set(&f.Notes, req.Notes)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to fetch friends", err))
		return
	}
	respond.OK(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req friendReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	now := h.Now().UTC()
	f := models.Friend{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	req.apply(&f)
	if strings.TrimSpace(f.Name) == "" {
		respond.Fail(c, apperr.Validation("name is required"))
		return
	}

	if err := h.Repo.Create(c.Request.Context(), f); err != nil {
		respond.Fail(c, apperr.Store("Failed to create friend", err))
		return
	}
	respond.Created(c, f)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := respond.PathID(c, "friend")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	f, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to fetch friend", err))
		return
	}
	if f == nil {
		respond.Fail(c, apperr.NotFound("Friend not found"))
		return
	}
	respond.OK(c, f)
}

func (h *Handler) update(c *gin.Context) {
	id, err := respond.PathID(c, "friend")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	var req friendReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	f, err := h.Repo.Get(ctx, id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to update friend", err))
		return
	}
	if f == nil {
		respond.Fail(c, apperr.NotFound("Friend not found"))
		return
	}

	req.apply(f)
	if strings.TrimSpace(f.Name) == "" {
		respond.Fail(c, apperr.Validation("name is required"))
		return
	}
	f.UpdatedAt = h.Now().UTC()

	ok, err := h.Repo.Update(ctx, *f)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to update friend", err))
		return
	}
	if !ok {
		respond.Fail(c, apperr.NotFound("Friend not found"))
		return
	}
	respond.OK(c, f)
}

func (h *Handler) remove(c *gin.Context) {
	id, err := respond.PathID(c, "friend")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to delete friend", err))
		return
	}
	if !ok {
		respond.Fail(c, apperr.NotFound("Friend not found"))
		return
	}
	respond.Message(c, "Friend deleted successfully")
}
