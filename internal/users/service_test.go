package users

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/credits"
	"resume-builder/internal/shared/telemetry"
)

func TestLoginGrantsSignupCreditsOnce(t *testing.T) {
	t.Cleanup(telemetry.SetOutput(io.Discard))
	ledger := credits.NewService()
	svc := NewService(NewMemoryRepo(), ledger, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := svc.Login(ctx, User{ID: "google:1", Email: "jane@example.com", FullName: "Jane"})
		require.NoError(t, err)
		assert.Equal(t, "Jane", user.FullName)
	}

	balance, err := ledger.Balance(ctx, "google:1")
	require.NoError(t, err)
	assert.Equal(t, 3, balance)
}

func TestLoginRequiresIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil, 3)
	_, err := svc.Login(context.Background(), User{ID: "google:1"})
	assert.Error(t, err)
}

func TestPGUpsertReportsInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	mock.ExpectQuery("INSERT INTO users .+ ON CONFLICT .+ RETURNING").
		WithArgs("google:1", "jane@example.com", "Jane", "").
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))

	created, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "jane@example.com", FullName: "Jane"})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeIncludesCredits(t *testing.T) {
	t.Cleanup(telemetry.SetOutput(io.Discard))
	gin.SetMode(gin.TestMode)
	ledger := credits.NewService()
	svc := NewService(NewMemoryRepo(), ledger, 3)
	_, err := svc.Login(context.Background(), User{ID: "google:1", Email: "jane@example.com", FullName: "Jane"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Set("userEmail", "token@example.com")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	var body struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Credits int    `json:"credits"`
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-Test-User", "google:1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "jane@example.com", body.Email)
	assert.Equal(t, 3, body.Credits)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-Test-User", "cli:ops")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "token@example.com", body.Email)
	assert.Equal(t, 0, body.Credits)
}

func TestLoginNormalizesAndKeepsPicture(t *testing.T) {
	t.Cleanup(telemetry.SetOutput(io.Discard))
	svc := NewService(NewMemoryRepo(), nil, 0)
	ctx := context.Background()

	first, err := svc.Login(ctx, User{ID: " google:1 ", Email: " Jane@Example.COM", PictureURL: "https://img/1"})
	require.NoError(t, err)
	assert.Equal(t, "google:1", first.ID)
	assert.Equal(t, "jane@example.com", first.Email)

	second, err := svc.Login(ctx, User{ID: "google:1", Email: "jane@example.com", FullName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/1", second.PictureURL)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}
