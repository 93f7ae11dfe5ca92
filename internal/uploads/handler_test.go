package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/internal/shared/telemetry"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakePresigner struct {
	key, contentType string
	err              error
}

func (f *fakePresigner) PresignPut(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	f.key, f.contentType = key, contentType
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.example.com/" + key + "?X-Amz-Signature=abc", nil
}

func newUploadsRouter(t *testing.T, presigner Presigner) *gin.Engine {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Next()
	})
	NewHandler(local.New(t.TempDir()), presigner).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartBody(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func upload(router http.Handler, user string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/profile-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-User", user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadProfileImageAndReadBack(t *testing.T) {
	router := newUploadsRouter(t, nil)
	content := append(append([]byte{}, pngHeader...), []byte("rest-of-image")...)

	body, ct := multipartBody(t, "me.jpeg", content)
	resp := upload(router, "u1", body, ct)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created uploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ContentType != "image/png" || !strings.HasSuffix(created.ProfileImageRef, "_me.png") {
		t.Fatalf("sniffed type should win over the file name: %+v", created)
	}
	if !object.OwnedBy(created.ProfileImageRef, "u1") {
		t.Fatalf("key %q not namespaced to owner", created.ProfileImageRef)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+created.ProfileImageRef, nil)
	req.Header.Set("X-Test-User", "u1")
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)
	if get.Code != http.StatusOK || !bytes.Equal(get.Body.Bytes(), content) {
		t.Fatalf("owner read: got %d", get.Code)
	}
	if get.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected content type %q", get.Header().Get("Content-Type"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+created.ProfileImageRef, nil)
	req.Header.Set("X-Test-User", "u2")
	get = httptest.NewRecorder()
	router.ServeHTTP(get, req)
	if get.Code != http.StatusNotFound {
		t.Fatalf("foreign read: expected 404, got %d", get.Code)
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	router := newUploadsRouter(t, nil)
	body, ct := multipartBody(t, "cv.png", []byte("%PDF-1.4 not an image"))
	resp := upload(router, "u1", body, ct)
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
}

func TestUploadRejectsOversizedImages(t *testing.T) {
	router := newUploadsRouter(t, nil)
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, maxImageBytes)...)
	body, ct := multipartBody(t, "big.png", content)
	resp := upload(router, "u1", body, ct)
	if resp.Code != http.StatusRequestEntityTooLarge && resp.Code != http.StatusBadRequest {
		t.Fatalf("expected oversized upload to be rejected, got %d", resp.Code)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	router := newUploadsRouter(t, nil)
	resp := upload(router, "u1", &bytes.Buffer{}, "multipart/form-data; boundary=x")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPresign(t *testing.T) {
	router := newUploadsRouter(t, nil)
	presignReq := func(router http.Handler, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "u1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := presignReq(router, `{"fileName":"me.png","contentType":"image/png","sizeBytes":100}`)
	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("local store: expected 501, got %d", resp.Code)
	}

	fake := &fakePresigner{}
	router = newUploadsRouter(t, fake)
	resp = presignReq(router, `{"fileName":"me.png","contentType":"image/webp","sizeBytes":100}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.contentType != "image/webp" || !strings.HasSuffix(fake.key, "_me.webp") || !object.OwnedBy(fake.key, "u1") {
		t.Fatalf("unexpected presign call %+v", fake)
	}

	resp = presignReq(router, `{"fileName":"cv.pdf","contentType":"application/pdf","sizeBytes":100}`)
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("pdf: expected 415, got %d", resp.Code)
	}

	resp = presignReq(router, `{"fileName":"me.png","contentType":"image/png","sizeBytes":6000000}`)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized: expected 413, got %d", resp.Code)
	}

	fake.err = errors.New("boom")
	resp = presignReq(router, `{"fileName":"me.png","contentType":"image/png","sizeBytes":100}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("presign failure: expected 500, got %d", resp.Code)
	}
}

func TestImageName(t *testing.T) {
	tests := []struct {
		name, contentType, want string
	}{
		{"me.jpeg", "image/jpeg", "me.jpg"},
		{"portrait", "image/webp", "portrait.webp"},
		{"", "image/png", "profile.png"},
		{".hidden", "image/png", ".hidden.png"},
	}
	for _, tt := range tests {
		if got := imageName(tt.name, tt.contentType); got != tt.want {
			t.Fatalf("imageName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
