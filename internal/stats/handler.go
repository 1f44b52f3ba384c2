package stats

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/apperr"
	"bookshelf/internal/respond"
)

type Handler struct {
	Aggregator *Aggregator
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{Aggregator: agg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.dashboard)
}

func (h *Handler) dashboard(c *gin.Context) {
	year := h.Aggregator.Now().UTC().Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			respond.Fail(c, apperr.Validation("invalid year"))
			return
		}
		year = y
	}

	s, err := h.Aggregator.Dashboard(c.Request.Context(), year)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, s)
}
