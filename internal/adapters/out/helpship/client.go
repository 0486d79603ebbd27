// Package helpship is the HTTP client of the Helpship fulfillment system.
//
// Every organization has its own OAuth2 client credentials and environment. GatewayFactory
// resolves them from the settings repository and caches one Client per organization; each
// Client carries its own token source and rate limiter.
package helpship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 2048

// APIError is a non-2xx answer from Helpship.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("helpship %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client implements ports.FulfillmentGateway for one organization.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	requestTimeout time.Duration
	logger         *zap.Logger
}

var _ ports.FulfillmentGateway = (*Client)(nil)

// NewClient builds a client on top of an authenticated HTTP client.
func NewClient(baseURL string, httpClient *http.Client, limiter *rate.Limiter, requestTimeout time.Duration, logger *zap.Logger) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     httpClient,
		limiter:        limiter,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

func (c *Client) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", newOrderPayload(o), &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("helpship create order: response carries no id")
	}
	return resp.ID, nil
}

func (c *Client) GetStatus(ctx context.Context, externalID string) (ports.RemoteStatus, error) {
	var resp orderStatusResponse
	if err := c.do(ctx, http.MethodGet, orderPath(externalID, ""), nil, &resp); err != nil {
		return "", err
	}
	return parseRemoteStatus(resp.Status)
}

func (c *Client) UpdateOrder(ctx context.Context, externalID string, o *order.Order) error {
	return c.do(ctx, http.MethodPatch, orderPath(externalID, ""), newOrderPayload(o), nil)
}

func (c *Client) SetHold(ctx context.Context, externalID, note string) error {
	return c.transition(ctx, externalID, "hold", notePayload{Note: note}, ports.RemoteOnHold)
}

func (c *Client) SetUnhold(ctx context.Context, externalID string) error {
	return c.transition(ctx, externalID, "unhold", nil, ports.RemotePending)
}

func (c *Client) Cancel(ctx context.Context, externalID, note string) error {
	return c.transition(ctx, externalID, "archive", notePayload{Note: note}, ports.RemoteArchived)
}

func (c *Client) Uncancel(ctx context.Context, externalID string) error {
	return c.transition(ctx, externalID, "unarchive", nil, ports.RemotePending)
}

// transition moves the remote order to want. The current status is read first and the
// action is skipped when the order is already there. Helpship answers 409 when the order
// is not in a state the action applies to; that is still a success when a concurrent
// change already brought the order to want.
func (c *Client) transition(ctx context.Context, externalID, action string, body any, want ports.RemoteStatus) error {
	logger := c.logger.With(zap.String("helpshipOrderId", externalID), zap.String("action", action))

	current, err := c.GetStatus(ctx, externalID)
	switch {
	case err != nil:
		logger.Debug("helpship status read failed, posting action anyway", zap.Error(err))
	case current == want:
		logger.Debug("helpship order already in requested state", zap.String("status", string(current)))
		return nil
	}

	err = c.do(ctx, http.MethodPost, orderPath(externalID, action), body, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		return err
	}

	current, statusErr := c.GetStatus(ctx, externalID)
	if statusErr != nil {
		return errors.Join(err, statusErr)
	}
	if current != want {
		return err
	}

	logger.Debug("helpship order reached requested state concurrently", zap.String("status", string(current)))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("helpship rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("helpship %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("helpship request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode helpship response: %w", err)
	}
	return nil
}

func orderPath(externalID, action string) string {
	path := "/api/orders/" + url.PathEscape(externalID)
	if action != "" {
		path += "/" + action
	}
	return path
}

func parseRemoteStatus(raw string) (ports.RemoteStatus, error) {
	status := ports.RemoteStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case ports.RemotePending, ports.RemoteOnHold, ports.RemoteArchived, ports.RemoteShipped, ports.RemoteDelivered:
		return status, nil
	default:
		return "", fmt.Errorf("helpship reported unknown status %q", raw)
	}
}
