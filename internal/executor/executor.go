// Package executor turns request configs into wire-level HTTP requests and
// normalizes the outcome. Execute never returns an error: transport failures
// become a sentinel response record with status code 0.
package executor

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/hermeshq/hermes/internal/core"
)

// Executor sends HTTP requests described by core.RequestConfig.
type Executor struct {
	httpClient    *http.Client
	proxyEndpoint string
}

// Option is a function that configures the Executor.
type Option func(*Executor)

// New creates an executor with the given options.
func New(opts ...Option) *Executor {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	e := &Executor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.httpClient.Timeout = timeout
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(e *Executor) {
		e.httpClient.Transport = transport
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(e *Executor) {
		e.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithProxyEndpoint routes requests through a forwarding endpoint. The
// target URL is passed as the endpoint's "url" query parameter.
func WithProxyEndpoint(endpoint string) Option {
	return func(e *Executor) {
		e.proxyEndpoint = endpoint
	}
}

// Execute sends the request and returns a normalized response record. All
// failures (malformed URL, DNS, connection, read) are converted into a
// record with StatusCode 0 and a human-readable body.
func (e *Executor) Execute(ctx context.Context, cfg *core.RequestConfig) *core.ResponseRecord {
	start := time.Now()

	httpReq, err := e.buildHTTPRequest(ctx, cfg)
	if err != nil {
		return core.NewTransportFailure("Invalid Request", err.Error(), elapsedSince(start))
	}

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return core.NewTransportFailure("Network Error", err.Error(), elapsedSince(start))
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return core.NewTransportFailure("Network Error", err.Error(), elapsedSince(start))
	}

	return core.NewResponseRecord(
		httpResp.StatusCode,
		httpResp.Status,
		flattenHeaders(httpResp.Header),
		string(bodyBytes),
		elapsedSince(start),
	)
}

// buildHTTPRequest converts a core.RequestConfig to an http.Request.
func (e *Executor) buildHTTPRequest(ctx context.Context, cfg *core.RequestConfig) (*http.Request, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	target := cfg.FullURL()
	if e.proxyEndpoint != "" {
		target = e.proxiedURL(target)
	}

	bodyReader, contentType := encodeBody(cfg)

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(cfg.Method), target, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Auth wins over user-supplied Authorization.
	if cfg.Auth.IsConfigured() {
		authHeaders := make(map[string]string)
		cfg.Auth.ApplyToHeaders(authHeaders)
		for key, value := range authHeaders {
			httpReq.Header.Set(key, value)
		}
	}

	return httpReq, nil
}

// proxiedURL rewrites the destination so the target becomes a query
// parameter of the configured proxy endpoint.
func (e *Executor) proxiedURL(target string) string {
	parsed, err := url.Parse(e.proxyEndpoint)
	if err != nil {
		return target
	}
	q := parsed.Query()
	q.Set("url", target)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// encodeBody prepares the request payload per the configured encoding. A
// forced Content-Type is returned when the encoding dictates one. Methods
// that do not transmit payloads get no body regardless of config.
func encodeBody(cfg *core.RequestConfig) (io.Reader, string) {
	if !cfg.AllowsBody() || cfg.Body == "" {
		return nil, ""
	}

	switch cfg.BodyEncoding {
	case core.EncodingFormURL:
		fields := core.ParseFormFields(cfg.Body)
		return strings.NewReader(core.EncodeFormURL(fields)), "application/x-www-form-urlencoded"

	case core.EncodingFormMultipart:
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, field := range core.ParseFormFields(cfg.Body) {
			_ = writer.WriteField(field.Key, field.Value)
		}
		_ = writer.Close()
		return &buf, writer.FormDataContentType()

	default:
		return strings.NewReader(cfg.Body), ""
	}
}

// flattenHeaders collapses a header collection into a flat map. When the
// same name occurs multiple times only the last value is retained.
func flattenHeaders(header http.Header) map[string]string {
	result := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			result[key] = values[len(values)-1]
		}
	}
	return result
}

func elapsedSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
