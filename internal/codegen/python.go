package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// Methods with a dedicated helper on the requests module.
var pythonMethodHelpers = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// PythonGenerator renders requests as python-requests scripts.
type PythonGenerator struct{}

// NewPythonGenerator creates a python generator.
func NewPythonGenerator() *PythonGenerator {
	return &PythonGenerator{}
}

func (g *PythonGenerator) Name() string {
	return "Python (requests)"
}

func (g *PythonGenerator) Target() Target {
	return TargetPython
}

func (g *PythonGenerator) Generate(cfg *core.RequestConfig) string {
	res := resolve(cfg)

	var sb strings.Builder
	sb.WriteString("import requests\n\n")
	fmt.Fprintf(&sb, "url = %s\n", pyString(res.URL))

	var callArgs []string

	if len(res.Keys) > 0 {
		sb.WriteString("headers = {\n")
		for _, key := range res.Keys {
			fmt.Fprintf(&sb, "    %s: %s,\n", pyString(key), pyString(res.Headers[key]))
		}
		sb.WriteString("}\n")
		callArgs = append(callArgs, "headers=headers")
	}

	if res.SendBody {
		switch res.Encoding {
		case core.EncodingFormMultipart:
			sb.WriteString("files = {\n")
			for _, field := range res.Fields {
				fmt.Fprintf(&sb, "    %s: (None, %s),\n", pyString(field.Key), pyString(field.Value))
			}
			sb.WriteString("}\n")
			callArgs = append(callArgs, "files=files")
		case core.EncodingFormURL:
			sb.WriteString("data = {\n")
			for _, field := range res.Fields {
				fmt.Fprintf(&sb, "    %s: %s,\n", pyString(field.Key), pyString(field.Value))
			}
			sb.WriteString("}\n")
			callArgs = append(callArgs, "data=data")
		default:
			fmt.Fprintf(&sb, "data = %s\n", pyString(res.Body))
			callArgs = append(callArgs, "data=data")
		}
	}

	sb.WriteString("\n")

	args := "url"
	if len(callArgs) > 0 {
		args += ", " + strings.Join(callArgs, ", ")
	}

	if pythonMethodHelpers[res.Method] {
		fmt.Fprintf(&sb, "response = requests.%s(%s)\n", strings.ToLower(res.Method), args)
	} else {
		fmt.Fprintf(&sb, "response = requests.request(%s, %s)\n", pyString(res.Method), args)
	}

	sb.WriteString("print(response.status_code)\n")
	sb.WriteString("print(response.text)")

	return sb.String()
}

// pyString renders s as a double-quoted Python string literal.
func pyString(s string) string {
	return strconv.Quote(s)
}
