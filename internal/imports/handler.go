package imports

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

const maxImportBytes = 10 << 20

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes attaches import routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports/extract", h.extract)
}

type extractResponse struct {
	Text        string `json:"text"`
	ContentType string `json:"contentType"`
	Characters  int    `json:"characters"`
}

func (h *Handler) extract(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes+(64<<10))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "file is required", nil)
		return
	}
	if fileHeader.Size > maxImportBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file must be 10MB or smaller", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "unable to read file", nil)
		return
	}

	declared := fileHeader.Header.Get("Content-Type")
	text, err := Text(c.Request.Context(), data, declared, fileHeader.Filename)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "only PDF and DOCX files can be imported", nil)
		return
	case errors.Is(err, ErrEmptyText):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", "no text could be extracted", nil)
		return
	case err != nil:
		telemetry.Info("imports.extract_failed", map[string]any{
			"user_id":    middleware.UserIDFromContext(c),
			"request_id": middleware.RequestIDFromContext(c),
			"size_bytes": len(data),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "the file could not be parsed", nil)
		return
	}

	respond.OK(c, extractResponse{
		Text:        text,
		ContentType: DetectType(data, declared, fileHeader.Filename),
		Characters:  len([]rune(text)),
	})
}
