// Package configapi reads tenant page configuration from the external config
// API: the ordered module list and the SEO snapshot of a page.
package configapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/platform/timeouts"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20

	// EndpointModules and EndpointSEO label config API calls.
	EndpointModules = "modules"
	EndpointSEO     = "seo"
)

// Page identifies one tenant page in one locale.
type Page struct {
	Tenant string
	Slug   string
	Locale i18n.Locale
}

// Source supplies page configuration.
type Source interface {
	Modules(ctx context.Context, page Page) ([]module.Descriptor, error)
	SEO(ctx context.Context, page Page) (seo.Snapshot, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the base round tripper; it is still wrapped for tracing.
	Transport http.RoundTripper
}

// Client is the HTTP implementation of Source.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New validates cfg and builds a client.
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("config api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("config api base url must be http or https, got %q", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("config api base url must include a host, got %q", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.ConfigAPIRequest
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger:  logger.Named("configapi"),
		metrics: m,
	}, nil
}

// Modules fetches the module list of a page.
func (c *Client) Modules(ctx context.Context, page Page) ([]module.Descriptor, error) {
	var descriptors []module.Descriptor
	if err := c.get(ctx, EndpointModules, page, &descriptors); err != nil {
		return nil, err
	}
	return descriptors, nil
}

// SEO fetches the metadata snapshot of a page.
func (c *Client) SEO(ctx context.Context, page Page) (seo.Snapshot, error) {
	var snap seo.Snapshot
	if err := c.get(ctx, EndpointSEO, page, &snap); err != nil {
		return seo.Snapshot{}, err
	}
	return snap, nil
}

// EndpointURL returns the request URL for endpoint and page.
func (c *Client) EndpointURL(endpoint string, page Page) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/tenants/" + page.Tenant + "/pages/" + page.Slug + "/" + endpoint
	u.RawPath = ""
	query := url.Values{}
	query.Set("locale", page.Locale.String())
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, endpoint string, page Page, target any) error {
	if !validSegment(page.Tenant) || !validSegment(page.Slug) {
		return apperrors.E(apperrors.KindInvalidInput, "tenant and page must be single path segments")
	}
	endpointURL := c.EndpointURL(endpoint, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInvalidInput, "build config api request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", page.Locale.String())

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error")
		c.logger.Warn("config api request failed",
			zap.String("endpoint", endpoint),
			zap.String("tenant", page.Tenant),
			zap.String("page", page.Slug),
			zap.Error(err),
		)
		return apperrors.Wrap(apperrors.KindUnavailable, "config api unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.observe(endpoint, "not_found")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return apperrors.EK(apperrors.KindNotFound, "site.page_not_found_title",
			fmt.Sprintf("%s not found for %s/%s", endpoint, page.Tenant, page.Slug))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(endpoint, "status_"+statusClass(resp.StatusCode))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.Warn("config api returned error status",
			zap.String("endpoint", endpoint),
			zap.String("tenant", page.Tenant),
			zap.String("page", page.Slug),
			zap.Int("status", resp.StatusCode),
		)
		return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("config api status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(target); err != nil {
		c.observe(endpoint, "malformed")
		c.logger.Warn("config api returned malformed payload",
			zap.String("endpoint", endpoint),
			zap.String("tenant", page.Tenant),
			zap.String("page", page.Slug),
			zap.Error(err),
		)
		return apperrors.Wrap(apperrors.KindMalformed, "decode config api response", err)
	}
	c.observe(endpoint, "ok")
	return nil
}

func (c *Client) observe(endpoint, outcome string) {
	c.metrics.ObserveConfigAPI(endpoint, outcome)
}

func validSegment(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != "." && value != ".." && !strings.ContainsAny(value, "/?#")
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

var _ Source = (*Client)(nil)
