package helpship

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTokenPath      = "/connect/token"
	DefaultClientTTL      = 30 * time.Minute
	DefaultRequestTimeout = 15 * time.Second
	DefaultRatePerSecond  = 5
	DefaultBurst          = 10
)

// Config holds the deployment-wide Helpship settings. Credentials are per organization.
type Config struct {
	DevelopmentURL string
	ProductionURL  string
	TokenPath      string
	Scopes         []string
	// ClientTTL bounds how long credentials read from settings are reused.
	ClientTTL      time.Duration
	RequestTimeout time.Duration
	RatePerSecond  float64
	Burst          int
	// HTTPClient is the transport used for token and API calls. Defaults to a client with
	// RequestTimeout as its timeout.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.TokenPath == "" {
		c.TokenPath = DefaultTokenPath
	}
	if c.ClientTTL <= 0 {
		c.ClientTTL = DefaultClientTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = DefaultRatePerSecond
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.RequestTimeout}
	}
	return c
}

// GatewayFactory resolves and caches one Client per organization.
type GatewayFactory struct {
	settings ports.FulfillmentSettingsRepository
	cfg      Config
	clock    ports.Clock
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[kernel.UUID]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	client    *Client
	expiresAt time.Time
}

var _ ports.FulfillmentGatewayFactory = (*GatewayFactory)(nil)

func NewGatewayFactory(
	settings ports.FulfillmentSettingsRepository,
	cfg Config,
	clock ports.Clock,
	logger *zap.Logger,
) *GatewayFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatewayFactory{
		settings: settings,
		cfg:      cfg.withDefaults(),
		clock:    clock,
		logger:   logger.With(zap.String("component", "helpship")),
		cache:    make(map[kernel.UUID]cacheEntry),
	}
}

// ForOrganization returns the cached client of the organization or builds one from its
// settings. Concurrent misses for the same organization share one settings read.
func (f *GatewayFactory) ForOrganization(ctx context.Context, organizationID kernel.UUID) (ports.FulfillmentGateway, error) {
	now := f.clock.Now()

	f.mu.RLock()
	entry, ok := f.cache[organizationID]
	f.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.client, nil
	}

	v, err, _ := f.group.Do(organizationID.String(), func() (any, error) {
		client, buildErr := f.build(ctx, organizationID)
		if buildErr != nil {
			return nil, buildErr
		}

		f.mu.Lock()
		f.cache[organizationID] = cacheEntry{client: client, expiresAt: now.Add(f.cfg.ClientTTL)}
		f.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Invalidate drops the cached client, e.g. after the organization changed its credentials.
func (f *GatewayFactory) Invalidate(organizationID kernel.UUID) {
	f.mu.Lock()
	delete(f.cache, organizationID)
	f.mu.Unlock()
}

func (f *GatewayFactory) build(ctx context.Context, organizationID kernel.UUID) (*Client, error) {
	settings, err := f.settings.Get(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("helpship settings for organization %s: %w", organizationID, err)
	}
	if settings.ClientID == "" || settings.ClientSecret == "" {
		return nil, fmt.Errorf("helpship credentials for organization %s are incomplete", organizationID)
	}

	baseURL := f.cfg.DevelopmentURL
	if settings.Environment == ports.FulfillmentProduction {
		baseURL = f.cfg.ProductionURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("helpship %s url is not configured", settings.Environment)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	credentials := clientcredentials.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		TokenURL:     baseURL + f.cfg.TokenPath,
		Scopes:       f.cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// The token source outlives the request that built it.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, f.cfg.HTTPClient)
	httpClient := credentials.Client(tokenCtx)
	httpClient.Timeout = f.cfg.RequestTimeout

	f.logger.Info("helpship client configured",
		zap.String("organizationId", organizationID.String()),
		zap.String("environment", string(settings.Environment)),
	)

	return NewClient(
		baseURL,
		httpClient,
		rate.NewLimiter(rate.Limit(f.cfg.RatePerSecond), f.cfg.Burst),
		f.cfg.RequestTimeout,
		f.logger.With(zap.String("organizationId", organizationID.String())),
	), nil
}
