// Package adtracking sends purchase conversions to a Graph-style ad attribution API.
package adtracking

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultGraphURL = "https://graph.facebook.com/v19.0"
	DefaultTimeout  = 10 * time.Second

	countryCode = "ro"
)

type Config struct {
	GraphURL   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Notifier implements ports.ConversionNotifier.
type Notifier struct {
	graphURL   string
	httpClient *http.Client
	clock      ports.Clock
	logger     *zap.Logger
}

var _ ports.ConversionNotifier = (*Notifier)(nil)

func NewNotifier(cfg Config, clock ports.Clock, logger *zap.Logger) *Notifier {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		graphURL:   strings.TrimSuffix(cfg.GraphURL, "/"),
		httpClient: cfg.HTTPClient,
		clock:      clock,
		logger:     logger.With(zap.String("component", "conversion-notifier")),
	}
}

type eventsRequest struct {
	Data          []event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

type event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	EventID        string     `json:"event_id"`
	ActionSource   string     `json:"action_source"`
	EventSourceURL string     `json:"event_source_url,omitempty"`
	UserData       userData   `json:"user_data"`
	CustomData     customData `json:"custom_data"`
}

type userData struct {
	Phone   []string `json:"ph"`
	City    []string `json:"ct,omitempty"`
	Country []string `json:"country"`
}

type customData struct {
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
	OrderID     string          `json:"order_id"`
	ContentName string          `json:"content_name,omitempty"`
	NumItems    int             `json:"num_items"`
}

// NotifyPurchase posts a Purchase event keyed by the order id, so a retried notification
// is deduplicated by the ad platform.
func (n *Notifier) NotifyPurchase(ctx context.Context, s store.Store, o *order.Order) error {
	if !s.AdTracking.Enabled() {
		return nil
	}

	numItems := o.LineItem().Quantity
	for _, u := range o.Upsells() {
		numItems += u.Quantity
	}

	body := eventsRequest{
		Data: []event{{
			EventName:      "Purchase",
			EventTime:      n.clock.Now().Unix(),
			EventID:        o.ID().String(),
			ActionSource:   "website",
			EventSourceURL: s.AdTracking.EventSourceURL,
			UserData: userData{
				Phone:   []string{hash(internationalPhone(o.Delivery().Phone.String()))},
				City:    hashOptional(o.Delivery().City),
				Country: []string{hash(countryCode)},
			},
			CustomData: customData{
				Value:       o.Total(),
				Currency:    s.CurrencyCode(),
				OrderID:     o.OrderNumber(),
				ContentName: o.LineItem().ProductName,
				NumItems:    numItems,
			},
		}},
		TestEventCode: s.AdTracking.TestEventCode,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal conversion event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s",
		n.graphURL, url.PathEscape(s.AdTracking.PixelID), url.QueryEscape(s.AdTracking.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("conversion event for order %s: %w", o.OrderNumber(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("conversion event for order %s: status %d: %s",
			o.OrderNumber(), resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	n.logger.Info("conversion event sent",
		zap.String("orderId", o.ID().String()),
		zap.String("pixelId", s.AdTracking.PixelID),
		zap.Bool("test", s.AdTracking.TestEventCode != ""),
	)
	return nil
}

// internationalPhone turns the national form "0722123456" into "40722123456".
func internationalPhone(national string) string {
	return "40" + strings.TrimPrefix(national, "0")
}

func hash(v string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return hex.EncodeToString(sum[:])
}

func hashOptional(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return []string{hash(strings.ReplaceAll(v, " ", ""))}
}
