package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/importer"
	"github.com/hermeshq/hermes/internal/transfer"
)

type importOptions struct {
	format string
	all    bool
}

func newImportCommand(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import collections from a file",
		Long: "Import collections and requests from a Postman collection or a file of cURL " +
			"commands. With --all the file is treated as a full data export and replaces " +
			"all stored collections, requests and environments.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			return runImport(cmd, e, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", "Source format (auto, postman, curl)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Restore a full data export, replacing existing data")

	return cmd
}

func runImport(cmd *cobra.Command, e *env, path string, opts *importOptions) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	ctx := context.Background()

	if opts.all {
		svc := transfer.NewService(e.store)
		if err := svc.ImportAll(ctx, content); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Data restored")
		return nil
	}

	registry := importer.NewRegistry()
	var results []*importer.ImportResult
	if opts.format == string(importer.FormatAuto) {
		results, err = registry.DetectAndImport(ctx, content)
	} else {
		results, err = registry.Import(ctx, importer.Format(opts.format), content)
	}
	if err != nil {
		return err
	}

	for _, result := range results {
		if _, err := e.store.AddCollection(ctx, result.Collection); err != nil {
			return fmt.Errorf("save collection %q: %w", result.Collection.Name, err)
		}
		for _, req := range result.Requests {
			if _, err := e.store.AddRequest(ctx, req); err != nil {
				return fmt.Errorf("save request %q: %w", req.Name, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%d requests)\n", result.Collection.Name, len(result.Requests))
	}
	return nil
}
