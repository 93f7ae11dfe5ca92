package credits

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const (
	defaultLedgerLimit = 20
	maxLedgerLimit     = 100
)

// Handler exposes credit endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches credit routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getBalance)
	rg.GET("/credits/ledger", h.getLedger)
}

func (h *Handler) getBalance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	credits, err := h.Svc.Balance(c.Request.Context(), userID)
	if err != nil {
		writeStoreError(c, err, "failed to fetch credits")
		return
	}
	respond.OK(c, gin.H{"credits": credits})
}

func (h *Handler) getLedger(c *gin.Context) {
	limit := defaultLedgerLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", nil)
			return
		}
		limit = min(parsed, maxLedgerLimit)
	}
	entries, err := h.Svc.Ledger(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		writeStoreError(c, err, "failed to fetch ledger")
		return
	}
	respond.OK(c, gin.H{"entries": entries})
}

func writeStoreError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
