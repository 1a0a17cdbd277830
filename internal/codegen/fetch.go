package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// FetchGenerator renders requests as JavaScript fetch calls.
type FetchGenerator struct{}

// NewFetchGenerator creates a fetch generator.
func NewFetchGenerator() *FetchGenerator {
	return &FetchGenerator{}
}

func (g *FetchGenerator) Name() string {
	return "JavaScript (fetch)"
}

func (g *FetchGenerator) Target() Target {
	return TargetFetch
}

func (g *FetchGenerator) Generate(cfg *core.RequestConfig) string {
	res := resolve(cfg)

	var sb strings.Builder

	useFormData := res.SendBody && res.Encoding == core.EncodingFormMultipart
	if useFormData {
		sb.WriteString("const form = new FormData();\n")
		for _, field := range res.Fields {
			fmt.Fprintf(&sb, "form.append(%s, %s);\n", jsString(field.Key), jsString(field.Value))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "fetch(%s, {\n", jsString(res.URL))
	fmt.Fprintf(&sb, "  method: %s,\n", jsString(res.Method))

	if len(res.Keys) > 0 {
		sb.WriteString("  headers: {\n")
		for _, key := range res.Keys {
			fmt.Fprintf(&sb, "    %s: %s,\n", jsString(key), jsString(res.Headers[key]))
		}
		sb.WriteString("  },\n")
	}

	if res.SendBody {
		switch res.Encoding {
		case core.EncodingFormMultipart:
			sb.WriteString("  body: form,\n")
		case core.EncodingFormURL:
			fmt.Fprintf(&sb, "  body: %s,\n", jsString(core.EncodeFormURL(res.Fields)))
		default:
			fmt.Fprintf(&sb, "  body: %s,\n", jsString(res.Body))
		}
	}

	sb.WriteString("})\n")
	sb.WriteString("  .then((res) => res.text())\n")
	sb.WriteString("  .then((body) => console.log(body))\n")
	sb.WriteString("  .catch((err) => console.error(err));")

	return sb.String()
}

// jsString renders s as a double-quoted JS string literal.
func jsString(s string) string {
	return strconv.Quote(s)
}
