package uploads

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const (
	maxImageBytes   = 5 << 20
	presignExpires  = 15 * time.Minute
	profileImageDir = "profile-images"
)

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Presigner issues direct-to-bucket upload URLs. Only the S3 store provides one.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}

// Handler stores profile images and serves them back to their owner.
type Handler struct {
	Store     object.ObjectStore
	Presigner Presigner
}

func NewHandler(store object.ObjectStore, presigner Presigner) *Handler {
	return &Handler{Store: store, Presigner: presigner}
}

// RegisterRoutes attaches upload routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/profile-image", h.uploadProfileImage)
	rg.POST("/uploads/presign", h.presign)
	rg.GET("/uploads/*key", h.get)
}

type uploadResponse struct {
	ProfileImageRef string `json:"profileImageRef"`
	ContentType     string `json:"contentType"`
	SizeBytes       int64  `json:"sizeBytes"`
}

func (h *Handler) uploadProfileImage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+(64<<10))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "file is required", nil)
		return
	}
	if fileHeader.Size > maxImageBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "profile image must be 5MB or smaller", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "unable to read file", nil)
		return
	}
	defer file.Close()

	// The declared type is not trusted; sniff the leading bytes instead.
	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if _, ok := allowedImageTypes[contentType]; !ok {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "profile image must be PNG, JPEG or WebP", nil)
		return
	}

	key, err := object.UserKey(profileImageDir, userID, imageName(fileHeader.Filename, contentType))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid file name", nil)
		return
	}
	info, err := h.Store.Put(c.Request.Context(), key, contentType, io.LimitReader(br, maxImageBytes))
	if err != nil {
		telemetry.Error("uploads.put_failed", map[string]any{"user_id": userID, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store image", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, uploadResponse{
		ProfileImageRef: info.Key,
		ContentType:     contentType,
		SizeBytes:       info.Size,
	})
}

type presignRequest struct {
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	ProfileImageRef  string `json:"profileImageRef"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// presign lets large deployments upload straight to the bucket instead of through
// the API.
func (h *Handler) presign(c *gin.Context) {
	if h.Presigner == nil {
		respond.Error(c, http.StatusNotImplemented, "presign_unavailable", "direct uploads need the S3 object store", nil)
		return
	}
	var req presignRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	contentType := strings.TrimSpace(req.ContentType)
	if _, ok := allowedImageTypes[contentType]; !ok {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "profile image must be PNG, JPEG or WebP", nil)
		return
	}
	if req.SizeBytes > maxImageBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "profile image must be 5MB or smaller", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	key, err := object.UserKey(profileImageDir, userID, imageName(req.FileName, contentType))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid fileName", nil)
		return
	}
	url, err := h.Presigner.PresignPut(c.Request.Context(), key, contentType, presignExpires)
	if err != nil {
		telemetry.Error("uploads.presign_failed", map[string]any{
			"user_id":    userID,
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}
	respond.OK(c, presignResponse{
		UploadURL:        url,
		ProfileImageRef:  key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

// get streams an image back. Keys are namespaced by a hash of the owner, so a key
// outside the caller's namespace is reported as missing.
func (h *Handler) get(c *gin.Context) {
	key := object.CleanKey(c.Param("key"))
	if key == "" || !object.OwnedBy(key, middleware.UserIDFromContext(c)) {
		respond.Error(c, http.StatusNotFound, "not_found", "upload not found", nil)
		return
	}
	rc, info, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "upload not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
}

// imageName keeps the client's base name but forces an extension matching the
// sniffed type so stores that infer content type from the key agree with it.
func imageName(name, contentType string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		name = "profile"
	}
	return name + allowedImageTypes[contentType]
}
