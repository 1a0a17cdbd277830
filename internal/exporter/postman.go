package exporter

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hermeshq/hermes/internal/core"
)

const postmanSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// PostmanExporter exports collections to Postman format (v2.1).
type PostmanExporter struct{}

// NewPostmanExporter creates a new Postman exporter.
func NewPostmanExporter() *PostmanExporter {
	return &PostmanExporter{}
}

func (p *PostmanExporter) Name() string {
	return "Postman Collection"
}

func (p *PostmanExporter) Format() Format {
	return FormatPostman
}

func (p *PostmanExporter) FileExtension() string {
	return ".postman_collection.json"
}

// Export produces a single collection document.
func (p *PostmanExporter) Export(ctx context.Context, coll core.CollectionRecord, requests []core.RequestItemRecord) ([]byte, error) {
	if coll.ID == "" {
		return nil, ErrInvalidCollection
	}
	return json.MarshalIndent(p.buildDocument(coll, requests), "", "  ")
}

// ExportAll produces one document when exactly one collection is given and a
// JSON array of documents otherwise. Requests are matched to their collection
// by CollectionID.
func (p *PostmanExporter) ExportAll(ctx context.Context, colls []core.CollectionRecord, requests []core.RequestItemRecord) ([]byte, error) {
	byCollection := make(map[string][]core.RequestItemRecord)
	for _, req := range requests {
		byCollection[req.CollectionID] = append(byCollection[req.CollectionID], req)
	}

	if len(colls) == 1 {
		return p.Export(ctx, colls[0], byCollection[colls[0].ID])
	}

	docs := make([]postmanCollection, 0, len(colls))
	for _, coll := range colls {
		docs = append(docs, p.buildDocument(coll, byCollection[coll.ID]))
	}
	return json.MarshalIndent(docs, "", "  ")
}

func (p *PostmanExporter) buildDocument(coll core.CollectionRecord, requests []core.RequestItemRecord) postmanCollection {
	pm := postmanCollection{
		Info: postmanInfo{
			PostmanID:   uuid.New().String(),
			Name:        coll.Name,
			Description: coll.Description,
			Schema:      postmanSchema,
		},
		Item: make([]postmanItem, 0, len(requests)),
	}

	for _, req := range requests {
		pm.Item = append(pm.Item, p.convertRequest(req))
	}

	return pm
}

func (p *PostmanExporter) convertRequest(rec core.RequestItemRecord) postmanItem {
	item := postmanItem{
		Name: rec.Name,
		Request: &postmanRequest{
			Method: rec.Method,
			Header: make([]postmanKeyValue, 0, len(rec.Headers)),
			URL:    decomposeURL(rec.FullURL()),
		},
	}

	for _, key := range sortedKeys(rec.Headers) {
		item.Request.Header = append(item.Request.Header, postmanKeyValue{
			Key:   key,
			Value: rec.Headers[key],
		})
	}

	item.Request.Body = p.convertBody(rec)

	if rec.Auth.IsConfigured() {
		item.Request.Auth = convertAuth(rec.Auth)
	}

	return item
}

// convertBody maps the stored body back to a Postman body node. Form bodies
// whose stored fields cannot be recovered are emitted as raw instead of
// failing the export.
func (p *PostmanExporter) convertBody(rec core.RequestItemRecord) *postmanBody {
	if rec.Body == "" {
		return nil
	}

	switch rec.BodyEncoding {
	case core.EncodingFormMultipart, core.EncodingFormURL:
		fields := core.ParseFormFields(rec.Body)
		if len(fields) == 0 {
			return &postmanBody{Mode: "raw", Raw: rec.Body}
		}

		pairs := make([]postmanKeyValue, 0, len(fields))
		for _, f := range fields {
			pairs = append(pairs, postmanKeyValue{Key: f.Key, Value: f.Value, Type: "text"})
		}

		if rec.BodyEncoding == core.EncodingFormMultipart {
			return &postmanBody{Mode: "formdata", FormData: pairs}
		}
		return &postmanBody{Mode: "urlencoded", URLEncoded: pairs}
	}

	return &postmanBody{Mode: "raw", Raw: rec.Body}
}

// decomposeURL splits a URL into the protocol/host/path/query segments the
// v2.1 schema expects. Unparseable URLs get placeholder protocol and host
// segments; the raw string is kept verbatim either way.
func decomposeURL(rawURL string) postmanURLObject {
	obj := postmanURLObject{Raw: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		obj.Protocol = "http"
		obj.Host = []string{"localhost"}
		return obj
	}

	obj.Protocol = u.Scheme
	obj.Host = strings.Split(u.Hostname(), ".")
	obj.Port = u.Port()

	if path := strings.Trim(u.Path, "/"); path != "" {
		obj.Path = strings.Split(path, "/")
	}

	query := u.Query()
	qKeys := make([]string, 0, len(query))
	for k := range query {
		qKeys = append(qKeys, k)
	}
	sort.Strings(qKeys)
	for _, k := range qKeys {
		for _, v := range query[k] {
			obj.Query = append(obj.Query, postmanKeyValue{Key: k, Value: v})
		}
	}

	return obj
}

func convertAuth(auth *core.AuthConfig) *postmanAuth {
	pm := &postmanAuth{Type: auth.Type}

	switch auth.GetAuthType() {
	case core.AuthTypeBearer:
		pm.Bearer = []postmanAuthItem{
			{Key: "token", Value: auth.Token, Type: "string"},
		}
	case core.AuthTypeBasic:
		pm.Basic = []postmanAuthItem{
			{Key: "username", Value: auth.Username, Type: "string"},
			{Key: "password", Value: auth.Password, Type: "string"},
		}
	case core.AuthTypeAPIKey:
		pm.APIKey = []postmanAuthItem{
			{Key: "key", Value: auth.HeaderName, Type: "string"},
			{Key: "value", Value: auth.HeaderValue, Type: "string"},
		}
	}

	return pm
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Postman format structures for export

type postmanCollection struct {
	Info postmanInfo   `json:"info"`
	Item []postmanItem `json:"item"`
}

type postmanInfo struct {
	PostmanID   string `json:"_postman_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

type postmanItem struct {
	Name    string          `json:"name"`
	Request *postmanRequest `json:"request,omitempty"`
}

type postmanRequest struct {
	Method string            `json:"method"`
	Header []postmanKeyValue `json:"header"`
	Body   *postmanBody      `json:"body,omitempty"`
	URL    postmanURLObject  `json:"url"`
	Auth   *postmanAuth      `json:"auth,omitempty"`
}

type postmanURLObject struct {
	Raw      string            `json:"raw"`
	Protocol string            `json:"protocol,omitempty"`
	Host     []string          `json:"host,omitempty"`
	Port     string            `json:"port,omitempty"`
	Path     []string          `json:"path,omitempty"`
	Query    []postmanKeyValue `json:"query,omitempty"`
}

type postmanKeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type postmanBody struct {
	Mode       string            `json:"mode"`
	Raw        string            `json:"raw,omitempty"`
	FormData   []postmanKeyValue `json:"formdata,omitempty"`
	URLEncoded []postmanKeyValue `json:"urlencoded,omitempty"`
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

// Verify PostmanExporter implements Exporter interface
var _ Exporter = (*PostmanExporter)(nil)
