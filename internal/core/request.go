package core

import (
	"errors"
	"net/url"
	"strings"
)

// BodyEncoding describes how a request body string is turned into a payload.
type BodyEncoding string

const (
	EncodingRaw            BodyEncoding = "raw"
	EncodingFormURL        BodyEncoding = "form-urlencoded"
	EncodingFormMultipart  BodyEncoding = "form-multipart"
)

// Methods supported by the request builder.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// RequestConfig describes a single HTTP request to execute or translate.
type RequestConfig struct {
	Method       string            `json:"method" yaml:"method"`
	URL          string            `json:"url" yaml:"url"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams  map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body         string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyEncoding BodyEncoding      `json:"bodyEncoding,omitempty" yaml:"bodyEncoding,omitempty"`
	Auth         *AuthConfig       `json:"auth,omitempty" yaml:"auth,omitempty"`
}

// NewRequestConfig creates a request config with the given method and URL.
func NewRequestConfig(method, rawURL string) (*RequestConfig, error) {
	if method == "" {
		return nil, errors.New("method cannot be empty")
	}
	if rawURL == "" {
		return nil, errors.New("url cannot be empty")
	}

	return &RequestConfig{
		Method:       strings.ToUpper(method),
		URL:          rawURL,
		Headers:      make(map[string]string),
		QueryParams:  make(map[string]string),
		BodyEncoding: EncodingRaw,
	}, nil
}

// SetHeader sets a header value.
func (r *RequestConfig) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// SetQueryParam sets a query parameter.
func (r *RequestConfig) SetQueryParam(key, value string) {
	if r.QueryParams == nil {
		r.QueryParams = make(map[string]string)
	}
	r.QueryParams[key] = value
}

// AllowsBody reports whether the method transmits a request payload.
// GET/HEAD/DELETE/OPTIONS bodies are suppressed even when configured.
func (r *RequestConfig) AllowsBody() bool {
	switch strings.ToUpper(r.Method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// FullURL returns the URL with query parameters appended. Existing query
// parameters in the URL are preserved; configured ones are appended, not
// deduplicated. An unparseable URL is returned unchanged.
func (r *RequestConfig) FullURL() string {
	return MergeQueryParams(r.URL, r.QueryParams)
}

// MergeQueryParams appends params to the query string of rawURL,
// percent-encoding values and keeping any parameters already present.
func MergeQueryParams(rawURL string, params map[string]string) string {
	if len(params) == 0 {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// Clone creates a deep copy of the request config.
func (r *RequestConfig) Clone() *RequestConfig {
	clone := &RequestConfig{
		Method:       r.Method,
		URL:          r.URL,
		Body:         r.Body,
		BodyEncoding: r.BodyEncoding,
		Headers:      make(map[string]string, len(r.Headers)),
		QueryParams:  make(map[string]string, len(r.QueryParams)),
		Auth:         r.Auth.Clone(),
	}
	for k, v := range r.Headers {
		clone.Headers[k] = v
	}
	for k, v := range r.QueryParams {
		clone.QueryParams[k] = v
	}
	return clone
}

// Validate checks the config for structural problems.
func (r *RequestConfig) Validate() error {
	if r.Method == "" {
		return errors.New("method cannot be empty")
	}
	if r.URL == "" {
		return errors.New("url cannot be empty")
	}
	if _, err := url.Parse(r.URL); err != nil {
		return err
	}
	return nil
}
