package core

import (
	"time"

	"github.com/google/uuid"
)

// CollectionRecord is a named grouping of saved requests.
type CollectionRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCollectionRecord creates a collection record with a fresh ID.
func NewCollectionRecord(name string) CollectionRecord {
	return CollectionRecord{
		ID:   uuid.New().String(),
		Name: name,
	}
}

// RequestItemRecord is a saved request. CollectionID optionally references a
// parent collection; deleting the collection cascades to its requests.
type RequestItemRecord struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId,omitempty"`
	Name         string    `json:"name"`
	RequestConfig
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRequestItemRecord creates a request item with a fresh ID.
func NewRequestItemRecord(name, method, url string) RequestItemRecord {
	return RequestItemRecord{
		ID:   uuid.New().String(),
		Name: name,
		RequestConfig: RequestConfig{
			Method:       method,
			URL:          url,
			Headers:      make(map[string]string),
			QueryParams:  make(map[string]string),
			BodyEncoding: EncodingRaw,
		},
	}
}

// EnvironmentRecord holds a named set of variables substitutable into
// requests. At most one environment is active at a time system-wide.
type EnvironmentRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Variables map[string]string `json:"variables"`
	IsActive  bool              `json:"isActive"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewEnvironmentRecord creates an environment record with a fresh ID.
func NewEnvironmentRecord(name string) EnvironmentRecord {
	return EnvironmentRecord{
		ID:        uuid.New().String(),
		Name:      name,
		Variables: make(map[string]string),
	}
}

// SetVariable sets a variable value.
func (e *EnvironmentRecord) SetVariable(key, value string) {
	if e.Variables == nil {
		e.Variables = make(map[string]string)
	}
	e.Variables[key] = value
}

// HistoryEntry is a persisted snapshot of one executed request and its
// normalized response.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	RequestMethod  string            `json:"requestMethod"`
	RequestURL     string            `json:"requestUrl"`
	RequestHeaders map[string]string `json:"requestHeaders,omitempty"`
	RequestBody    string            `json:"requestBody,omitempty"`

	ResponseStatus     int               `json:"responseStatus"`
	ResponseStatusText string            `json:"responseStatusText,omitempty"`
	ResponseHeaders    map[string]string `json:"responseHeaders,omitempty"`
	ResponseBody       string            `json:"responseBody,omitempty"`
	ResponseTime       int64             `json:"responseTime"` // milliseconds
	ResponseSize       int64             `json:"responseSize"` // bytes

	CollectionID string `json:"collectionId,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
	RequestName  string `json:"requestName,omitempty"`
	Environment  string `json:"environment,omitempty"`
}

// NewHistoryEntry builds a history entry from a request and its response.
func NewHistoryEntry(cfg *RequestConfig, resp *ResponseRecord) HistoryEntry {
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return HistoryEntry{
		ID:                 uuid.New().String(),
		Timestamp:          time.Now(),
		RequestMethod:      cfg.Method,
		RequestURL:         cfg.FullURL(),
		RequestHeaders:     headers,
		RequestBody:        cfg.Body,
		ResponseStatus:     resp.StatusCode,
		ResponseStatusText: resp.StatusText,
		ResponseHeaders:    resp.Headers,
		ResponseBody:       resp.Body,
		ResponseTime:       resp.ElapsedMillis,
		ResponseSize:       int64(resp.SizeBytes),
	}
}
