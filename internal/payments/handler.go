package payments

import (
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

const maxWebhookBody = 64 << 10

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches checkout routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/checkout", h.checkout)
}

// RegisterPublicRoutes attaches the package list and the Stripe webhook.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/packages", h.packages)
	rg.POST("/payments/webhook", h.webhook)
}

type checkoutRequest struct {
	PackageID string `json:"packageId" validate:"required"`
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	out, err := h.Svc.StartCheckout(c.Request.Context(), middleware.UserIDFromContext(c), req.PackageID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPackage):
			respond.Error(c, http.StatusBadRequest, "invalid_request", "unknown packageId", nil)
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "payments_unavailable", "payments are not configured", nil)
		default:
			telemetry.Error("payments.checkout_failed", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusBadGateway, "payment_provider_error", "could not start checkout", nil)
		}
		return
	}
	respond.OK(c, out)
}

func (h *Handler) packages(c *gin.Context) {
	list := make([]Package, 0, len(h.Svc.Catalog))
	for _, p := range h.Svc.Catalog {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Amount < list[j].Amount })
	respond.OK(c, list)
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "unreadable body", nil)
		return
	}
	out, err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			respond.Error(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "webhook processing failed", nil)
		return
	}
	respond.OK(c, gin.H{"received": true, "granted": out.Granted, "duplicate": out.Duplicate})
}
