package core

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// FormField is one key/value pair of a form-encoded or multipart body.
type FormField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseFormFields parses a body string into form fields using a two-stage
// parser: a JSON parse is attempted first (array of {key,value} objects, or
// a flat object), falling back to newline-delimited key=value pairs. Lines
// that fail to parse are silently skipped; the result may be empty but the
// call never fails.
func ParseFormFields(body string) []FormField {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil
	}

	if fields, ok := parseJSONFields(trimmed); ok {
		return fields
	}

	return parseLineFields(body)
}

func parseJSONFields(body string) ([]FormField, bool) {
	var arr []FormField
	if err := json.Unmarshal([]byte(body), &arr); err == nil {
		fields := make([]FormField, 0, len(arr))
		for _, f := range arr {
			if f.Key != "" {
				fields = append(fields, f)
			}
		}
		return fields, true
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys) // Deterministic order

		fields := make([]FormField, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, FormField{Key: k, Value: stringifyValue(obj[k])})
		}
		return fields, true
	}

	return nil, false
}

func parseLineFields(body string) []FormField {
	var fields []FormField
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		fields = append(fields, FormField{Key: kv[0], Value: kv[1]})
	}
	return fields
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}

// EncodeFormURL encodes fields as an application/x-www-form-urlencoded
// payload.
func EncodeFormURL(fields []FormField) string {
	values := url.Values{}
	for _, f := range fields {
		values.Add(f.Key, f.Value)
	}
	return values.Encode()
}

// MarshalFormFields serializes fields as the JSON array representation used
// for stored form bodies.
func MarshalFormFields(fields []FormField) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}
