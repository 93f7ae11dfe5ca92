package bootstrap

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
)

func memoryConfig(t *testing.T) config.Config {
	return config.Config{
		Env:              "dev",
		PublicOrigin:     "https://cv.example.com",
		DefaultLanguage:  "en",
		ObjectStoreType:  "local",
		LocalStoreDir:    t.TempDir(),
		LLMProvider:      "none",
		ChargeMode:       "on_success",
		SignupCredits:    3,
		AlertTransport:   "log",
		RateLimitDefault: 100,
		RateLimitBurst:   100,
	}
}

func request(t *testing.T, app *App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildMemoryApp(t *testing.T) {
	t.Cleanup(telemetry.SetOutput(io.Discard))
	app, err := Build(memoryConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Nil(t, app.DB)
	assert.Nil(t, app.PDF)
	assert.NotNil(t, app.Reconciler)

	resp := request(t, app, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = request(t, app, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "credit_ops_started_total")

	resp = request(t, app, http.MethodGet, "/api/v1/credits", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = request(t, app, http.MethodGet, "/api/v1/payments/packages", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestBuildServesResumeFlow(t *testing.T) {
	t.Cleanup(telemetry.SetOutput(io.Discard))
	app, err := Build(memoryConfig(t))
	require.NoError(t, err)

	ctx := t.Context()
	_, err = app.Credits.GrantSignup(ctx, "google:1", 3)
	require.NoError(t, err)
	token, err := app.Issuer.Sign(auth.Identity{UserID: "google:1", Email: "a@example.com"})
	require.NoError(t, err)

	resp := request(t, app, http.MethodGet, "/api/v1/credits", token, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "3")

	resp = request(t, app, http.MethodPost, "/api/v1/resumes", token,
		`{"templateName":"professional","resumeData":{"personalInfo":{"fullName":"Ada Lovelace"}}}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = request(t, app, http.MethodGet, "/api/v1/resumes/"+created.ID+"/export/html", token, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Ada Lovelace")

	resp = request(t, app, http.MethodGet, "/api/v1/resumes/"+created.ID+"/export/pdf", token, "")
	assert.Equal(t, http.StatusNotImplemented, resp.Code)

	resp = request(t, app, http.MethodGet, "/api/v1/public/resumes/"+created.ID, "", "")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = request(t, app, http.MethodGet, "/api/v1/public/resumes/"+created.ID, "expired.token.value", "")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = request(t, app, http.MethodGet, "/api/v1/credits", "expired.token.value", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = request(t, app, http.MethodPost, "/api/v1/ai/enhance", token, `{"text":"Led a team"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	resp = request(t, app, http.MethodGet, "/api/v1/credits", token, "")
	assert.Contains(t, resp.Body.String(), "3")
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Env = "production"
	cfg.JWTSecret = "secret"
	_, err := Build(cfg)
	require.Error(t, err)
}
