package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/core"
)

type sendOptions struct {
	headers []string
	params  []string
	body    string
	json    bool
}

func newSendCommand(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send METHOD URL",
		Short: "Send an HTTP request",
		Long:  "Send an HTTP request and print the response. Variables from the active environment are substituted before sending.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			return runSend(cmd, e, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header (format: 'Key: Value')")
	cmd.Flags().StringArrayVarP(&opts.params, "query", "q", nil, "Query parameter (format: key=value)")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output response as JSON")

	return cmd
}

func runSend(cmd *cobra.Command, e *env, method, url string, opts *sendOptions) error {
	cfg, err := core.NewRequestConfig(method, url)
	if err != nil {
		return err
	}

	for key, value := range parseHeaderFlags(opts.headers) {
		cfg.SetHeader(key, value)
	}
	for _, p := range opts.params {
		if idx := strings.Index(p, "="); idx > 0 {
			cfg.SetQueryParam(p[:idx], p[idx+1:])
		}
	}
	cfg.Body = opts.body

	resp := e.app().Send(context.Background(), cfg)

	if opts.json {
		return printResponseJSON(cmd, resp)
	}
	return printResponse(cmd, resp)
}

func printResponseJSON(cmd *cobra.Command, resp *core.ResponseRecord) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

func printResponse(cmd *cobra.Command, resp *core.ResponseRecord) error {
	out := cmd.OutOrStdout()

	if resp.IsTransportFailure() {
		fmt.Fprintf(out, "%s: %s\n", resp.StatusText, resp.Body)
		return nil
	}

	fmt.Fprintf(out, "HTTP %d %s\n", resp.StatusCode, resp.StatusText)
	fmt.Fprintf(out, "Time: %dms  Size: %dB\n\n", resp.ElapsedMillis, resp.SizeBytes)

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s: %s\n", k, resp.Headers[k])
	}

	if resp.Body != "" {
		fmt.Fprintf(out, "\n%s\n", resp.Body)
	}
	return nil
}
