package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/codegen"
	"github.com/hermeshq/hermes/internal/core"
)

type generateOptions struct {
	headers []string
	body    string
	copy    bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate TARGET METHOD URL",
		Short: "Generate a code snippet for a request",
		Long:  "Generate an equivalent code snippet (curl, fetch, python) for a request without sending it.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header (format: 'Key: Value')")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the snippet to the clipboard")

	return cmd
}

func runGenerate(cmd *cobra.Command, target, method, url string, opts *generateOptions) error {
	registry := codegen.NewRegistry()
	gen, ok := registry.Get(codegen.Target(target))
	if !ok {
		names := make([]string, 0)
		for _, t := range registry.ListTargets() {
			names = append(names, string(t))
		}
		return fmt.Errorf("unknown target %q (available: %s)", target, strings.Join(names, ", "))
	}

	cfg, err := core.NewRequestConfig(method, url)
	if err != nil {
		return err
	}
	for key, value := range parseHeaderFlags(opts.headers) {
		cfg.SetHeader(key, value)
	}
	cfg.Body = opts.body

	snippet := gen.Generate(cfg)
	fmt.Fprintln(cmd.OutOrStdout(), snippet)

	if opts.copy {
		if err := clipboard.WriteAll(snippet); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
	}
	return nil
}
