package codegen

import (
	"fmt"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// CurlGenerator renders requests as curl invocations.
type CurlGenerator struct{}

// NewCurlGenerator creates a curl generator.
func NewCurlGenerator() *CurlGenerator {
	return &CurlGenerator{}
}

func (g *CurlGenerator) Name() string {
	return "cURL"
}

func (g *CurlGenerator) Target() Target {
	return TargetCurl
}

func (g *CurlGenerator) Generate(cfg *core.RequestConfig) string {
	res := resolve(cfg)

	var parts []string
	parts = append(parts, "curl")

	if res.Method != "GET" {
		parts = append(parts, "-X", res.Method)
	}

	parts = append(parts, singleQuote(res.URL))

	for _, key := range res.Keys {
		// Basic credentials go through -u, not a literal header.
		if res.HasBasic && key == "Authorization" {
			continue
		}
		parts = append(parts, "-H", shellQuote(fmt.Sprintf("%s: %s", key, res.Headers[key])))
	}

	if res.HasBasic {
		parts = append(parts, "-u", shellQuote(res.BasicUser+":"+res.BasicPass))
	}

	if res.SendBody {
		switch res.Encoding {
		case core.EncodingFormMultipart:
			for _, field := range res.Fields {
				parts = append(parts, "-F", shellQuote(field.Key+"="+field.Value))
			}
		case core.EncodingFormURL:
			parts = append(parts, "-d", shellQuote(core.EncodeFormURL(res.Fields)))
		default:
			parts = append(parts, "-d", shellQuote(res.Body))
		}
	}

	return joinContinued(parts)
}

// joinContinued lays out the command with one flag per line.
func joinContinued(parts []string) string {
	var sb strings.Builder
	sb.WriteString(parts[0])

	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "-") && i+1 < len(parts) {
			sb.WriteString(" \\\n  ")
			sb.WriteString(part)
			i++
			sb.WriteString(" ")
			sb.WriteString(parts[i])
		} else {
			sb.WriteString(" ")
			sb.WriteString(part)
		}
	}

	return sb.String()
}

// shellQuote single-quotes a value when it contains shell-special
// characters.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'$`\\!*?[]{}()<>|&;") {
		return s
	}
	return singleQuote(s)
}

func singleQuote(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\"'\"'")
	return "'" + escaped + "'"
}
