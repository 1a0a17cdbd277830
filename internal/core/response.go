package core

// ResponseRecord is the normalized result of executing a request. A status
// code of 0 means the transport failed before a response was received; the
// body then carries a human-readable error description. Records are created
// fresh per execution and never mutated after return.
type ResponseRecord struct {
	StatusCode    int               `json:"statusCode"`
	StatusText    string            `json:"statusText"`
	Headers       map[string]string `json:"headers"`
	Body          string            `json:"body"`
	ElapsedMillis int64             `json:"elapsedMillis"`
	SizeBytes     int               `json:"sizeBytes"`
}

// NewResponseRecord creates a response record for a received response.
// SizeBytes is derived from the body's UTF-8 byte length.
func NewResponseRecord(statusCode int, statusText string, headers map[string]string, body string, elapsedMillis int64) *ResponseRecord {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &ResponseRecord{
		StatusCode:    statusCode,
		StatusText:    statusText,
		Headers:       headers,
		Body:          body,
		ElapsedMillis: elapsedMillis,
		SizeBytes:     len(body),
	}
}

// NewTransportFailure creates the sentinel record for a failed transport.
func NewTransportFailure(statusText, description string, elapsedMillis int64) *ResponseRecord {
	return &ResponseRecord{
		StatusCode:    0,
		StatusText:    statusText,
		Headers:       make(map[string]string),
		Body:          description,
		ElapsedMillis: elapsedMillis,
		SizeBytes:     len(description),
	}
}

// IsTransportFailure reports whether the record describes a transport failure.
func (r *ResponseRecord) IsTransportFailure() bool {
	return r.StatusCode == 0
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *ResponseRecord) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
