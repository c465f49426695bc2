package dart

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

const (
	defaultBaseURL = "https://opendart.fss.or.kr/api"

	// DART quota is roughly 1,000 calls per minute per key.
	// 기본값 480/분(8 req/s)은 그 아래로 여유를 둔 값이다.
	defaultRatePerMin = 480
)

// Client handles communication with the DART (Data Analysis, Retrieval
// and Transfer System) OpenAPI.
// ⭐ SSOT: DART API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new DART API client.
// DART requires legacy TLS configuration (RSA key exchange).
// ratePerMin은 키에 허용된 분당 호출 수이며 0 이하면 기본값을 쓴다.
func NewClient(apiKey string, ratePerMin int, log *logger.Logger) *Client {
	if ratePerMin <= 0 {
		ratePerMin = defaultRatePerMin
	}
	perSec := rate.Limit(float64(ratePerMin) / 60.0)
	burst := ratePerMin / 60
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: newLegacyCompatibleClient(30 * time.Second),
		limiter:    rate.NewLimiter(perSec, burst),
		logger:     log,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// newLegacyCompatibleClient creates an HTTP client compatible with legacy TLS servers.
// The DART server requires RSA key exchange cipher suites which Go 1.22+ no longer
// offers by default.
func newLegacyCompatibleClient(timeout time.Duration) *http.Client {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,

		// DART doesn't negotiate ECDHE, so RSA KEX suites must stay in the list
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,

			tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_RSA_WITH_AES_128_CBC_SHA,
			tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		},
	}

	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false, // legacy server compatibility

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       tlsCfg,
		MaxIdleConns:          20,
		MaxConnsPerHost:       5, // avoid overwhelming the DART API
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}

// getJSON performs a rate-limited GET against a DART endpoint and decodes
// the JSON body into out. Transport-level failures are returned as-is so
// the retry wrapper can classify them.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	query := url.Values{"crtfc_key": []string{c.apiKey}}
	for key, vals := range params {
		for _, v := range vals {
			query.Add(key, v)
		}
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// getJSONWithRetry wraps getJSON with exponential backoff for transient
// network failures. API-level errors (bad key, no data) are not retried.
func (c *Client) getJSONWithRetry(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	const maxRetries = 3
	const initialBackoff = 500 * time.Millisecond
	const maxBackoff = 5 * time.Second

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := c.getJSON(ctx, endpoint, params, out)
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return err
		}

		if attempt == maxRetries-1 {
			break
		}

		c.logger.WithError(err).WithFields(map[string]interface{}{
			"attempt":  attempt + 1,
			"max":      maxRetries - 1,
			"endpoint": endpoint,
			"backoff":  backoff,
		}).Debug("Retrying DART API call")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = backoff * 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return fmt.Errorf("%w: %s: %v", contracts.ErrUpstreamUnavailable, endpoint, lastErr)
}

// statusErr maps a DART API status code to an error.
// Status codes: 000 = success, 013 = no data, others = API error.
func statusErr(endpoint, status, message string) error {
	switch status {
	case "000":
		return nil
	case "013":
		return fmt.Errorf("%w: %s", contracts.ErrMissingData, endpoint)
	default:
		return fmt.Errorf("DART API error on %s: %s - %s", endpoint, status, message)
	}
}

// isRetryableError checks if an error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	retryablePatterns := []string{
		"connection reset by peer",
		"eof",
		"connection refused",
		"network unreachable",
		"timeout",
		"i/o timeout",
		"connect: operation timed out",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}

	return false
}
