package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/exporter"
	"github.com/hermeshq/hermes/internal/transfer"
)

type exportOptions struct {
	collection string
	output     string
	all        bool
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export collections to a file",
		Long: "Export stored collections as Postman collection JSON. With --collection a " +
			"single collection is exported; otherwise all collections are. With --all a " +
			"full data file including environments is written instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			return runExport(cmd, e, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.collection, "collection", "c", "", "ID of a single collection to export")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Export a full data file including environments")

	return cmd
}

func runExport(cmd *cobra.Command, e *env, opts *exportOptions) error {
	ctx := context.Background()

	var data []byte
	var err error
	switch {
	case opts.all:
		data, err = transfer.NewService(e.store).ExportAll(ctx)
	case opts.collection != "":
		coll, getErr := e.store.GetCollection(ctx, opts.collection)
		if getErr != nil {
			return getErr
		}
		requests, listErr := e.store.ListRequestsByCollection(ctx, coll.ID)
		if listErr != nil {
			return listErr
		}
		data, err = exporter.NewPostmanExporter().Export(ctx, coll, requests)
	default:
		colls, listErr := e.store.ListCollections(ctx)
		if listErr != nil {
			return listErr
		}
		requests, listErr := e.store.ListRequests(ctx)
		if listErr != nil {
			return listErr
		}
		data, err = exporter.NewPostmanExporter().ExportAll(ctx, colls, requests)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", opts.output)
	return nil
}
