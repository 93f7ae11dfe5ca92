package aiops

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

// Handler exposes the credit-gated AI endpoints.
type Handler struct {
	Runner *Runner
}

func NewHandler(runner *Runner) *Handler {
	return &Handler{Runner: runner}
}

// RegisterRoutes attaches AI routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/enhance", h.enhance)
	rg.POST("/ai/job-match", h.jobMatch)
	rg.POST("/ai/translate", h.translate)
}

type enhanceRequest struct {
	Text    string `json:"text" validate:"required"`
	Section string `json:"section" validate:"required"`
}

type jobMatchRequest struct {
	ResumeData     json.RawMessage `json:"resumeData" validate:"required"`
	JobDescription string          `json:"jobDescription" validate:"required"`
}

type translateRequest struct {
	ResumeData     json.RawMessage `json:"resumeData" validate:"required"`
	TargetLanguage string          `json:"targetLanguage" validate:"required"`
}

func (h *Handler) enhance(c *gin.Context) {
	var req enhanceRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	out, err := h.Runner.Run(c.Request.Context(), callerFrom(c), Enhance{Section: req.Section, Text: req.Text})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"enhancedText":     out.Result,
		"creditsRemaining": out.CreditsRemaining,
	})
}

func (h *Handler) jobMatch(c *gin.Context) {
	var req jobMatchRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	doc, ok := decodeResume(c, req.ResumeData)
	if !ok {
		return
	}
	out, err := h.Runner.Run(c.Request.Context(), callerFrom(c), JobMatch{Resume: doc, JobDescription: req.JobDescription})
	if err != nil {
		writeError(c, err)
		return
	}
	result, _ := out.Result.(MatchResult)
	respond.OK(c, gin.H{
		"analysis":         result.Analysis,
		"matchingScore":    result.Score,
		"creditsRemaining": out.CreditsRemaining,
	})
}

func (h *Handler) translate(c *gin.Context) {
	var req translateRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	doc, ok := decodeResume(c, req.ResumeData)
	if !ok {
		return
	}
	out, err := h.Runner.Run(c.Request.Context(), callerFrom(c), Translate{Resume: doc, TargetLanguage: req.TargetLanguage})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"translatedResumeData": out.Result,
		"targetLanguage":       req.TargetLanguage,
		"creditsRemaining":     out.CreditsRemaining,
	})
}

func callerFrom(c *gin.Context) Caller {
	return Caller{
		UserID:    middleware.UserIDFromContext(c),
		RequestID: middleware.RequestIDFromContext(c),
	}
}

func decodeResume(c *gin.Context, raw json.RawMessage) (model.ResumeDocument, bool) {
	doc, err := model.DecodeDocument(raw)
	if err != nil {
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "resumeData does not match the resume schema", schemaErr.Violations)
			return model.ResumeDocument{}, false
		}
		respond.Error(c, http.StatusBadRequest, "invalid_request", "resumeData is invalid", nil)
		return model.ResumeDocument{}, false
	}
	return doc, true
}

func writeError(c *gin.Context, err error) {
	var opErr *Error
	if !errors.As(err, &opErr) {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "operation failed", nil)
		return
	}
	switch opErr.Kind {
	case KindUnauthorized:
		respond.Error(c, http.StatusUnauthorized, string(opErr.Kind), "missing or invalid token", nil)
	case KindInsufficientCredits:
		respond.Error(c, http.StatusPaymentRequired, string(opErr.Kind), "insufficient credits", gin.H{
			"required":  opErr.Required,
			"available": opErr.Available,
		})
	case KindUpstreamUnavailable:
		respond.Error(c, http.StatusServiceUnavailable, string(opErr.Kind), "AI service unavailable", nil)
	case KindUpstreamEmptyResponse:
		respond.Error(c, http.StatusBadGateway, string(opErr.Kind), "AI service returned no content", nil)
	case KindResponseParseError:
		respond.Error(c, http.StatusBadGateway, string(opErr.Kind), "AI response could not be parsed", nil)
	case KindRefundFailed:
		respond.Error(c, http.StatusInternalServerError, string(opErr.Kind), "operation failed and the refund is pending", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "operation failed", nil)
	}
}
