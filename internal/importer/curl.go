package importer

import (
	"context"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// CurlImporter imports pasted curl command text.
type CurlImporter struct{}

// NewCurlImporter creates a new curl importer.
func NewCurlImporter() *CurlImporter {
	return &CurlImporter{}
}

func (c *CurlImporter) Name() string {
	return "curl command"
}

func (c *CurlImporter) Format() Format {
	return FormatCurl
}

func (c *CurlImporter) FileExtensions() []string {
	return []string{".sh", ".curl", ".txt"}
}

func (c *CurlImporter) DetectFormat(content []byte) bool {
	trimmed := strings.TrimSpace(string(content))
	return strings.HasPrefix(trimmed, "curl ") || strings.HasPrefix(trimmed, "curl\t")
}

// Import wraps the parsed requests in a single collection.
func (c *CurlImporter) Import(ctx context.Context, content []byte) ([]*ImportResult, error) {
	requests := ParseCurlText(string(content))
	if len(requests) == 0 {
		return nil, ErrParseError
	}

	coll := core.NewCollectionRecord("Imported from cURL")
	for i := range requests {
		requests[i].CollectionID = coll.ID
	}

	return []*ImportResult{{
		Collection:   coll,
		Requests:     requests,
		SourceFormat: FormatCurl,
	}}, nil
}

// ParseCurlText parses pasted curl command text into request records, one
// record per curl invocation. The parser is line-oriented and best-effort:
// a line beginning with "curl" starts a new request, flushing any prior
// request that captured a URL; -X sets the method, a bare token is the URL,
// -H "Name: Value" adds one header, -d sets the raw body. Anything else is
// ignored. Escaped quotes and backslash continuations are not handled.
func ParseCurlText(text string) []core.RequestItemRecord {
	var records []core.RequestItemRecord
	var current *core.RequestItemRecord

	flush := func() {
		if current != nil && current.URL != "" {
			current.Name = generateNameFromURL(current.URL)
			records = append(records, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "\\"))
		if line == "" {
			continue
		}

		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		if tokens[0] == "curl" {
			flush()
			rec := core.NewRequestItemRecord("", "GET", "")
			current = &rec
			tokens = tokens[1:]
		} else if current == nil {
			continue
		}

		for i := 0; i < len(tokens); i++ {
			switch tokens[i] {
			case "-X", "--request":
				if i+1 < len(tokens) {
					current.Method = strings.ToUpper(tokens[i+1])
					i++
				}
			case "-H", "--header":
				if i+1 < len(tokens) {
					header := tokens[i+1]
					if idx := strings.Index(header, ":"); idx > 0 {
						key := strings.TrimSpace(header[:idx])
						value := strings.TrimSpace(header[idx+1:])
						current.Headers[key] = value
					}
					i++
				}
			case "-d", "--data", "--data-raw":
				if i+1 < len(tokens) {
					current.Body = tokens[i+1]
					current.BodyEncoding = core.EncodingRaw
					i++
				}
			default:
				if !strings.HasPrefix(tokens[i], "-") && current.URL == "" {
					current.URL = tokens[i]
				}
			}
		}
	}

	flush()
	return records
}

// tokenize splits a line respecting single and double quotes.
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}

		if r == '"' || r == '\'' {
			inQuote = r
			continue
		}

		if r == ' ' || r == '\t' {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func generateNameFromURL(url string) string {
	name := url
	if idx := strings.Index(name, "://"); idx >= 0 {
		name = name[idx+3:]
	}

	if idx := strings.Index(name, "/"); idx >= 0 {
		path := name[idx:]
		if qIdx := strings.Index(path, "?"); qIdx >= 0 {
			path = path[:qIdx]
		}
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) > 0 && segments[len(segments)-1] != "" {
			return segments[len(segments)-1]
		}
	}

	if idx := strings.Index(name, "/"); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[:idx]
	}

	return name
}

// Verify CurlImporter implements Importer interface
var _ Importer = (*CurlImporter)(nil)
