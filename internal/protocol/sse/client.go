// Package sse is a minimal Server-Sent-Events test client: it subscribes to
// a text/event-stream endpoint and delivers decoded events to a callback.
package sse

import (
	"bufio"
	"context"
	"net/http"
	"strings"
)

// Event is a single decoded server-sent event.
type Event struct {
	ID    string
	Type  string
	Data  string
}

// Handler receives decoded events.
type Handler func(Event)

// Subscribe connects to the endpoint and invokes handler for each event
// until the stream ends or the context is cancelled.
func Subscribe(ctx context.Context, endpoint string, headers map[string]string, handler Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var event Event
	var data []string

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(data) > 0 {
				event.Data = strings.Join(data, "\n")
				handler(event)
			}
			event = Event{}
			data = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, "event:"):
			event.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "id:"):
			event.ID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
		}
		// Comment lines (leading colon) and unknown fields are ignored.
	}

	return scanner.Err()
}
