package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"golang.org/x/net/http/httpproxy"

	"github.com/dixit-research/dixit/internal/models"
)

// HTTPDoer is the subset of tls_client.HttpClient used by the client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// BackendClient is the interface the session and commands depend on
type BackendClient interface {
	Send(ctx context.Context, question string) (*models.Answer, error)
	Health(ctx context.Context) (string, error)
	Endpoint() string
	HealthEndpoint() string
	Backend() models.Backend
	Close()
}

// Client talks to the answering backend
type Client struct {
	httpClient     HTTPDoer
	baseURL        string
	backend        models.Backend
	endpoint       string
	healthEndpoint string
	timeout        time.Duration
	userAgent      string
	mu             sync.RWMutex
	closed         bool
}

// Ensure Client implements BackendClient
var _ BackendClient = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBackend selects the request contract (ask or chat)
func WithBackend(backend models.Backend) ClientOption {
	return func(c *Client) {
		c.backend = backend
	}
}

// WithTimeout bounds every request; zero disables the client-side deadline
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHealthEndpoint overrides the health probe URL
func WithHealthEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.healthEndpoint = endpoint
	}
}

// WithHTTPClient replaces the underlying transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the backend at baseURL. When baseURL has no
// path the backend's default path is appended; a URL with a path is used as is.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = models.DefaultEndpoint
	}

	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", baseURL)
	}

	client := &Client{
		baseURL:   strings.TrimRight(parsed.String(), "/"),
		backend:   models.BackendAsk,
		timeout:   60 * time.Second,
		userAgent: models.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.endpoint = resolveEndpoint(parsed, client.backend)
	if client.healthEndpoint == "" {
		client.healthEndpoint = originOf(parsed) + models.PathHealth
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		if client.timeout > 0 {
			options = append(options, tls_client.WithTimeoutSeconds(int(client.timeout.Seconds())+1))
		}
		if proxy := proxyFor(parsed, httpproxy.FromEnvironment()); proxy != "" {
			options = append(options, tls_client.WithProxyUrl(proxy))
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// proxyFor returns the proxy selected for u by the HTTP_PROXY, HTTPS_PROXY
// and NO_PROXY settings in cfg, or "" for a direct connection
func proxyFor(u *url.URL, cfg *httpproxy.Config) string {
	proxy, err := cfg.ProxyFunc()(u)
	if err != nil || proxy == nil {
		return ""
	}
	return proxy.String()
}

// resolveEndpoint picks the request URL for the backend contract
func resolveEndpoint(u *url.URL, backend models.Backend) string {
	if u.Path == "" || u.Path == "/" {
		return originOf(u) + backend.Path()
	}
	return strings.TrimRight(u.String(), "/")
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// Close marks the client as closed; later requests fail
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Endpoint returns the URL questions are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// HealthEndpoint returns the health probe URL
func (c *Client) HealthEndpoint() string {
	return c.healthEndpoint
}

// Backend returns the active request contract
func (c *Client) Backend() models.Backend {
	return c.backend
}

// Timeout returns the per-request deadline
func (c *Client) Timeout() time.Duration {
	return c.timeout
}
