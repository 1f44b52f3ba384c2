package lending

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/apperr"
	"bookshelf/internal/respond"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.getByID)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.remove)
}

type createReq struct {
	BookID             string `json:"bookId"`
	FriendID           string `json:"friendId"`
	ExpectedReturnDate string `json:"expectedReturnDate"`
	Notes              string `json:"notes"`
	Condition          string `json:"condition"`
}

type updateReq struct {
	ExpectedReturnDate *string `json:"expectedReturnDate"`
	ActualReturnDate   *string `json:"actualReturnDate"`
	Status             *string `json:"status"`
	ReturnCondition    *string `json:"returnCondition"`
	Notes              *string `json:"notes"`
}

func (h *Handler) list(c *gin.Context) {
	filter := strings.ToLower(strings.TrimSpace(c.Query("status")))
	items, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	bookID, err := respond.ParseID(req.BookID, "book")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	friendID, err := respond.ParseID(req.FriendID, "friend")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	expected, err := parseDate(req.ExpectedReturnDate, "expectedReturnDate")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	v, err := h.Service.Create(c.Request.Context(), CreateInput{
		BookID:             bookID,
		FriendID:           friendID,
		ExpectedReturnDate: expected,
		Notes:              req.Notes,
		Condition:          req.Condition,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, v)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := respond.PathID(c, "lending")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	v, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) update(c *gin.Context) {
	id, err := respond.PathID(c, "lending")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	var req updateReq
	if err := respond.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	in := UpdateInput{
		Status:          req.Status,
		ReturnCondition: req.ReturnCondition,
		Notes:           req.Notes,
	}
	if req.ExpectedReturnDate != nil {
		if in.ExpectedReturnDate, err = parseDate(*req.ExpectedReturnDate, "expectedReturnDate"); err != nil {
			respond.Fail(c, err)
			return
		}
	}
	if req.ActualReturnDate != nil {
		if in.ActualReturnDate, err = parseDate(*req.ActualReturnDate, "actualReturnDate"); err != nil {
			respond.Fail(c, err)
			return
		}
	}

	v, err := h.Service.Update(c.Request.Context(), id, in)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) remove(c *gin.Context) {
	id, err := respond.PathID(c, "lending")
	if err != nil {
		respond.Fail(c, err)
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Lending record deleted successfully")
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and the plain dates HTML date
// inputs send. An empty string means "not provided".
func parseDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid " + field)
}
