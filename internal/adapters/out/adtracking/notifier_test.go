package adtracking_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderflow/internal/adapters/out/adtracking"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	phone, err := kernel.NewPhone("0722 123 456")
	require.NoError(t, err)
	item, err := order.NewLineItem("Lampa de veghe", "LMP-01", 1)
	require.NoError(t, err)
	delivery, err := order.NewDelivery("Ion Popescu", phone, "Cluj", "Cluj-Napoca", "Str. Memorandumului 1", "400114")
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		OrganizationID: kernel.NewUUID(),
		StoreID:        kernel.NewUUID(),
		CustomerID:     kernel.NewUUID(),
		OrderNumber:    "JMR-00042",
		LineItem:       item,
		Subtotal:       decimal.RequireFromString("149.99"),
		ShippingCost:   decimal.Zero,
		Delivery:       delivery,
		Now:            testNow,
	})
	require.NoError(t, err)
	return o
}

func trackedStore() store.Store {
	return store.Store{
		ID: kernel.NewUUID(),
		AdTracking: store.AdTracking{
			PixelID:        "1234567890",
			AccessToken:    "secret token",
			EventSourceURL: "https://jamira.ro/checkout",
			TestEventCode:  "TEST123",
		},
	}
}

func sha(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

func TestNotifier_NotifyPurchase(t *testing.T) {
	var (
		gotPath  string
		gotToken string
		gotBody  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"events_received":1}`))
	}))
	defer srv.Close()

	o := testOrder(t)
	notifier := adtracking.NewNotifier(adtracking.Config{GraphURL: srv.URL}, clock.NewFixed(testNow), zap.NewNop())

	err := notifier.NotifyPurchase(t.Context(), trackedStore(), o)

	require.NoError(t, err)
	assert.Equal(t, "/1234567890/events", gotPath)
	assert.Equal(t, "secret token", gotToken)
	assert.Equal(t, "TEST123", gotBody["test_event_code"])

	events := gotBody["data"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	assert.Equal(t, "Purchase", ev["event_name"])
	assert.Equal(t, o.ID().String(), ev["event_id"])
	assert.EqualValues(t, testNow.Unix(), ev["event_time"])

	userData := ev["user_data"].(map[string]any)
	assert.Equal(t, []any{sha("40722123456")}, userData["ph"])

	customData := ev["custom_data"].(map[string]any)
	assert.Equal(t, "149.99", customData["value"])
	assert.Equal(t, "RON", customData["currency"])
}

func TestNotifier_NotifyPurchase_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	notifier := adtracking.NewNotifier(adtracking.Config{GraphURL: srv.URL}, clock.NewFixed(testNow), zap.NewNop())

	err := notifier.NotifyPurchase(t.Context(), trackedStore(), testOrder(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestNotifier_NotifyPurchase_TrackingDisabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	notifier := adtracking.NewNotifier(adtracking.Config{GraphURL: srv.URL}, clock.NewFixed(testNow), zap.NewNop())

	err := notifier.NotifyPurchase(t.Context(), store.Store{}, testOrder(t))

	require.NoError(t, err)
	assert.False(t, called)
}
