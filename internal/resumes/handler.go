package resumes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// Options configures the export side of the handler.
type Options struct {
	Objects         object.ObjectStore
	PDF             render.PDFRenderer
	PublicOrigin    string
	DefaultLanguage render.Language
}

// Handler wires résumé CRUD and exports to HTTP.
type Handler struct {
	Svc  *Service
	opts Options
}

// NewHandler constructs a Handler. A nil PDF renderer turns the PDF export off.
func NewHandler(svc *Service, opts Options) *Handler {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = render.English
	}
	return &Handler{Svc: svc, opts: opts}
}

// RegisterRoutes attaches the owner-only routes. The group must require a user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.PATCH("/resumes/:id/visibility", h.setVisibility)
}

// RegisterReadRoutes attaches routes that serve owners and, for public résumés,
// anonymous readers.
func (h *Handler) RegisterReadRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id", h.get)
	rg.GET("/public/resumes/:id", h.getPublic)
	h.registerExportRoutes(rg)
}

func (h *Handler) create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func (h *Handler) update(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

// getPublic ignores any bearer identity so owners see exactly what visitors see.
func (h *Handler) getPublic(c *gin.Context) {
	res, err := h.Svc.Get(c.Request.Context(), "", c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setVisibility(c *gin.Context) {
	var req visibilityRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	res, err := h.Svc.SetVisibility(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), *req.IsPublic)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func bindInput(c *gin.Context) (Input, bool) {
	var req resumeRequest
	if !respond.BindJSON(c, &req) {
		return Input{}, false
	}
	doc, ok := decodeResume(c, req.ResumeData)
	if !ok {
		return Input{}, false
	}
	return Input{
		TemplateName: req.TemplateName,
		ThemeColor:   req.ThemeColor,
		Data:         doc,
		IsPublic:     req.IsPublic,
	}, true
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
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "access_denied", "you do not have access to this resume", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	default:
		telemetry.Error("resumes.failed", map[string]any{"path": c.Request.URL.Path, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume request failed", nil)
	}
}
