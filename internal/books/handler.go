package books

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

// bookReq has no status/lentTo/lentDate: those belong to the lending
// lifecycle and are dropped if a client sends them.
type bookReq struct {
	Title          *string `json:"title"`
	Author         *string `json:"author"`
	OriginalTitle  *string `json:"originalTitle"`
	OriginalAuthor *string `json:"originalAuthor"`
	Genre          *string `json:"genre"`
	ISBN           *string `json:"isbn"`
	Description    *string `json:"description"`
	CoverURL       *string `json:"coverUrl"`
	Tags           *string `json:"tags"`
}

// apply copies every field present in the request onto b.
func (req bookReq) apply(b *models.Book) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.Title, req.Title)
	set(&b.Author, req.Author)
	set(&b.OriginalTitle, req.OriginalTitle)
	set(&b.OriginalAuthor, req.OriginalAuthor)
	set(&b.Genre, req.Genre)
	set(&b.ISBN, req.ISBN)
	set(&b.Description, req.Description)
	set(&b.CoverURL, req.CoverURL)
	set(&b.Tags, req.Tags)
}

func validate(b *models.Book) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return apperr.Validation("title and author are required")
	}
	return nil
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:     c.Query("q"),
		Genre: c.Query("genre"),
	}
	if s := strings.ToLower(strings.TrimSpace(c.Query("status"))); s != "" {
		if s != models.BookAvailable && s != models.BookLent {
			respond.Fail(c, apperr.Validation("status must be one of: available, lent"))
			return
		}
		q.Status = s
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to fetch books", err))
		return
	}
	respond.OK(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req bookReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	now := h.Now().UTC()
	b := models.Book{
		ID:        uuid.NewString(),
		Status:    models.BookAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(&b)
	if err := validate(&b); err != nil {
		respond.Fail(c, err)
		return
	}

	if err := h.Repo.Create(c.Request.Context(), b); err != nil {
		respond.Fail(c, apperr.Store("Failed to create book", err))
		return
	}
	respond.Created(c, b)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := respond.PathID(c, "book")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	b, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to fetch book", err))
		return
	}
	if b == nil {
		respond.Fail(c, apperr.NotFound("Book not found"))
		return
	}
	respond.OK(c, b)
}

func (h *Handler) update(c *gin.Context) {
	id, err := respond.PathID(c, "book")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	var req bookReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	b, err := h.Repo.Get(ctx, id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to update book", err))
		return
	}
	if b == nil {
		respond.Fail(c, apperr.NotFound("Book not found"))
		return
	}

	req.apply(b)
	if err := validate(b); err != nil {
		respond.Fail(c, err)
		return
	}
	b.UpdatedAt = h.Now().UTC()

	ok, err := h.Repo.UpdateDetails(ctx, *b)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to update book", err))
		return
	}
	if !ok {
		respond.Fail(c, apperr.NotFound("Book not found"))
		return
	}
	respond.OK(c, b)
}

// remove deletes the book only. Lendings that point at it stay and join
// to null afterwards.
func (h *Handler) remove(c *gin.Context) {
	id, err := respond.PathID(c, "book")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, apperr.Store("Failed to delete book", err))
		return
	}
	if !ok {
		respond.Fail(c, apperr.NotFound("Book not found"))
		return
	}
	respond.Message(c, "Book deleted successfully")
}
