package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// PostmanImporter imports Postman collection format (v2.0 and v2.1).
type PostmanImporter struct{}

// NewPostmanImporter creates a new Postman importer.
func NewPostmanImporter() *PostmanImporter {
	return &PostmanImporter{}
}

func (p *PostmanImporter) Name() string {
	return "Postman Collection"
}

func (p *PostmanImporter) Format() Format {
	return FormatPostman
}

func (p *PostmanImporter) FileExtensions() []string {
	return []string{".json", ".postman_collection.json"}
}

func (p *PostmanImporter) DetectFormat(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(trimmed, &docs); err != nil || len(docs) == 0 {
			return false
		}
		trimmed = bytes.TrimSpace(docs[0])
	}

	var check struct {
		Info *postmanInfo `json:"info"`
	}
	if err := json.Unmarshal(trimmed, &check); err != nil {
		return false
	}
	return check.Info != nil
}

// Import parses one collection document, or a JSON array of documents, into
// collection and request records. A document without an info object is
// structurally invalid and rejected.
func (p *PostmanImporter) Import(ctx context.Context, content []byte) ([]*ImportResult, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseError, err)
		}
		results := make([]*ImportResult, 0, len(docs))
		for _, doc := range docs {
			res, err := p.importDocument(doc)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
		}
		return results, nil
	}

	res, err := p.importDocument(trimmed)
	if err != nil {
		return nil, err
	}
	return []*ImportResult{res}, nil
}

func (p *PostmanImporter) importDocument(content []byte) (*ImportResult, error) {
	var pm postmanCollection
	if err := json.Unmarshal(content, &pm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	if pm.Info == nil {
		return nil, fmt.Errorf("%w: missing info object", ErrInvalidFormat)
	}

	coll := core.NewCollectionRecord(pm.Info.Name)
	coll.Description = pm.Info.Description

	result := &ImportResult{
		Collection:   coll,
		SourceFormat: FormatPostman,
	}

	// Folder items are walked recursively so that nested requests are kept
	// rather than dropped; the hierarchy itself is flattened.
	for _, item := range pm.Item {
		p.importItem(result, item)
	}

	return result, nil
}

func (p *PostmanImporter) importItem(result *ImportResult, item postmanItem) {
	if item.Request != nil {
		result.Requests = append(result.Requests, p.convertRequest(result.Collection.ID, item))
		return
	}
	for _, sub := range item.Item {
		p.importItem(result, sub)
	}
}

func (p *PostmanImporter) convertRequest(collectionID string, item postmanItem) core.RequestItemRecord {
	pm := item.Request

	method := "GET"
	if pm.Method != "" {
		method = strings.ToUpper(pm.Method)
	}

	rawURL, queryParams := extractURL(pm.URL)

	rec := core.NewRequestItemRecord(item.Name, method, rawURL)
	rec.CollectionID = collectionID
	rec.QueryParams = queryParams

	for _, h := range pm.Header {
		if h.Disabled || h.Key == "" || h.Value == "" {
			continue
		}
		rec.Headers[h.Key] = h.Value
	}

	if pm.Body != nil {
		switch pm.Body.Mode {
		case "raw":
			rec.Body = pm.Body.Raw
			rec.BodyEncoding = core.EncodingRaw
		case "formdata":
			rec.Body = marshalPairs(pm.Body.FormData)
			rec.BodyEncoding = core.EncodingFormMultipart
		case "urlencoded":
			rec.Body = marshalPairs(pm.Body.URLEncoded)
			rec.BodyEncoding = core.EncodingFormURL
		}
	}

	if pm.Auth != nil {
		rec.Auth = convertPostmanAuth(pm.Auth)
	}

	return rec
}

func marshalPairs(pairs []postmanKeyValue) string {
	fields := make([]core.FormField, 0, len(pairs))
	for _, p := range pairs {
		if p.Disabled {
			continue
		}
		fields = append(fields, core.FormField{Key: p.Key, Value: p.Value})
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}

// extractURL handles both the string and object forms of a Postman URL node.
// Query pairs declared on the object are returned separately with the query
// string stripped from the raw URL, so they are not sent twice.
func extractURL(raw json.RawMessage) (string, map[string]string) {
	if len(raw) == 0 {
		return "", map[string]string{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, map[string]string{}
	}

	var obj postmanURLObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", map[string]string{}
	}

	urlStr := obj.Raw
	if urlStr == "" {
		var b strings.Builder
		if obj.Protocol != "" {
			b.WriteString(obj.Protocol)
			b.WriteString("://")
		}
		b.WriteString(strings.Join(obj.Host, "."))
		if obj.Port != "" {
			b.WriteString(":")
			b.WriteString(obj.Port)
		}
		for _, seg := range obj.Path {
			b.WriteString("/")
			b.WriteString(seg)
		}
		urlStr = b.String()
	}

	params := make(map[string]string)
	if len(obj.Query) > 0 {
		for _, q := range obj.Query {
			if q.Disabled || q.Key == "" || q.Value == "" {
				continue
			}
			params[q.Key] = q.Value
		}
		if idx := strings.Index(urlStr, "?"); idx >= 0 {
			urlStr = urlStr[:idx]
		}
	}

	return urlStr, params
}

func convertPostmanAuth(auth *postmanAuth) *core.AuthConfig {
	switch auth.Type {
	case "bearer":
		return core.NewBearerAuth(authValue(auth.Bearer, "token", 0))
	case "basic":
		return core.NewBasicAuth(
			authValue(auth.Basic, "username", 0),
			authValue(auth.Basic, "password", 1),
		)
	case "apikey":
		return core.NewAPIKeyAuth(
			authValue(auth.APIKey, "key", 0),
			authValue(auth.APIKey, "value", 1),
		)
	}
	return nil
}

// authValue prefers matching the entry's key field, falling back to the
// positional index when no entry carries that key.
func authValue(items []postmanAuthItem, key string, index int) string {
	for _, it := range items {
		if it.Key == key {
			return it.Value
		}
	}
	if index >= 0 && index < len(items) {
		return items[index].Value
	}
	return ""
}

// Postman collection format structures

type postmanCollection struct {
	Info *postmanInfo  `json:"info"`
	Item []postmanItem `json:"item,omitempty"`
}

type postmanInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

type postmanItem struct {
	Name    string          `json:"name"`
	Item    []postmanItem   `json:"item,omitempty"`
	Request *postmanRequest `json:"request,omitempty"`
}

type postmanRequest struct {
	Method string            `json:"method"`
	Header []postmanKeyValue `json:"header,omitempty"`
	Body   *postmanBody      `json:"body,omitempty"`
	URL    json.RawMessage   `json:"url"` // string or postmanURLObject
	Auth   *postmanAuth      `json:"auth,omitempty"`
}

type postmanKeyValue struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type postmanBody struct {
	Mode       string            `json:"mode"`
	Raw        string            `json:"raw,omitempty"`
	FormData   []postmanKeyValue `json:"formdata,omitempty"`
	URLEncoded []postmanKeyValue `json:"urlencoded,omitempty"`
}

type postmanURLObject struct {
	Raw      string            `json:"raw,omitempty"`
	Protocol string            `json:"protocol,omitempty"`
	Host     []string          `json:"host,omitempty"`
	Port     string            `json:"port,omitempty"`
	Path     []string          `json:"path,omitempty"`
	Query    []postmanKeyValue `json:"query,omitempty"`
}

type postmanAuth struct {
	Type   string            `json:"type"`
	Bearer []postmanAuthItem `json:"bearer,omitempty"`
	Basic  []postmanAuthItem `json:"basic,omitempty"`
	APIKey []postmanAuthItem `json:"apikey,omitempty"`
}

type postmanAuthItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Verify PostmanImporter implements Importer interface
var _ Importer = (*PostmanImporter)(nil)
