package payments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"resume-builder/internal/credits"
	"resume-builder/internal/shared/telemetry"
)

const testSecret = "whsec_test_secret"

type fakeCheckout struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func newTestService(t *testing.T) (*Service, *credits.Service, *fakeCheckout) {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	ledger := credits.NewService()
	checkout := &fakeCheckout{}
	svc := &Service{
		Credits:       ledger,
		Events:        NewMemoryEventStore(),
		Checkout:      checkout,
		Catalog:       Catalog("price_starter", ""),
		WebhookSecret: testSecret,
		SuccessURL:    "https://app.example.com/success",
		CancelURL:     "https://app.example.com/pricing",
	}
	return svc, ledger, checkout
}

func sessionEvent(eventType, sessionID, userID string, amount int64, metadata string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_%s",
		"object": "event",
		"type": %q,
		"data": {"object": {
			"id": %q,
			"object": "checkout.session",
			"client_reference_id": %q,
			"amount_total": %d,
			"payment_status": "paid",
			"metadata": %s
		}}
	}`, sessionID, eventType, sessionID, userID, amount, metadata))
}

func sign(payload []byte) (string, []byte) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestWebhookGrantsMetadataCreditsOnce(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()
	header, payload := sign(sessionEvent("checkout.session.completed", "cs_1", "u1", 19900, `{"credits":"75","packageId":"pro"}`))

	out, err := svc.HandleWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, 75, out.Granted)

	out, err = svc.HandleWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.True(t, out.Duplicate)
	assert.Zero(t, out.Granted)

	balance, err := ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 75, balance)
}

func TestWebhookFallsBackToAmountTable(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	header, payload := sign(sessionEvent("checkout.session.completed", "cs_2", "u1", 9900, `{}`))
	out, err := svc.HandleWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Granted)

	header, payload = sign(sessionEvent("checkout.session.completed", "cs_3", "u1", 19900, `{"credits":"zero"}`))
	out, err = svc.HandleWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, 75, out.Granted)

	balance, _ := ledger.Balance(ctx, "u1")
	assert.Equal(t, 100, balance)
}

func TestWebhookRejectsUnknownAmount(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	header, payload := sign(sessionEvent("checkout.session.completed", "cs_4", "u1", 5000, `{}`))
	out, err := svc.HandleWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.Zero(t, out.Granted)

	balance, _ := ledger.Balance(ctx, "u1")
	assert.Zero(t, balance)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	header, payload := sign(sessionEvent("checkout.session.expired", "cs_5", "u1", 9900, `{"credits":"25"}`))

	out, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.expired", out.EventType)
	assert.Zero(t, out.Granted)

	balance, _ := ledger.Balance(context.Background(), "u1")
	assert.Zero(t, balance)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, _, _ := newTestService(t)
	payload := sessionEvent("checkout.session.completed", "cs_6", "u1", 9900, `{}`)

	_, err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStartCheckoutCarriesCreditMetadata(t *testing.T) {
	svc, _, checkout := newTestService(t)

	out, err := svc.StartCheckout(context.Background(), "u1", PackageStarter)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", out.SessionID)

	require.NotNil(t, checkout.params)
	assert.Equal(t, "u1", stripe.StringValue(checkout.params.ClientReferenceID))
	assert.Equal(t, "25", checkout.params.Metadata["credits"])
	assert.Equal(t, "starter", checkout.params.Metadata["packageId"])
	require.Len(t, checkout.params.LineItems, 1)
	assert.Equal(t, "price_starter", stripe.StringValue(checkout.params.LineItems[0].Price))

	_, err = svc.StartCheckout(context.Background(), "u1", PackagePro)
	require.NoError(t, err)
	require.NotNil(t, checkout.params.LineItems[0].PriceData, "unset price id falls back to inline price data")
	assert.Equal(t, int64(19900), stripe.Int64Value(checkout.params.LineItems[0].PriceData.UnitAmount))

	_, err = svc.StartCheckout(context.Background(), "u1", "platinum")
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestPGEventStoreReportsDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := NewPGEventStore(db)
	ev := Event{EventID: "evt_1", SessionID: "cs_1", UserID: "u1", Credits: 25, CreatedAt: time.Unix(0, 0).UTC()}

	mock.ExpectExec("INSERT INTO payment_events .+ ON CONFLICT DO NOTHING").
		WithArgs("evt_1", "cs_1", "u1", 25, ev.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs("evt_1", "cs_1", "u1", 25, ev.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := store.Record(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Record(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newPaymentsRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	h := NewHandler(svc)
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterPublicRoutes(api)
	return router
}

func TestWebhookHandler(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newPaymentsRouter(svc)
	header, payload := sign(sessionEvent("checkout.session.completed", "cs_7", "u1", 9900, `{"credits":"25"}`))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", header)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"granted":25`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckoutHandler(t *testing.T) {
	svc, _, checkout := newTestService(t)
	router := newPaymentsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", strings.NewReader(`{"packageId":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "checkout.stripe.com")

	checkout.err = errors.New("stripe down")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", strings.NewReader(`{"packageId":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadGateway, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/packages", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"credits":25`)
}
