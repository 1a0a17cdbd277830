package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/core"
	"github.com/hermeshq/hermes/internal/runner"
)

type runOptions struct {
	scriptPath string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run COLLECTION",
		Short: "Run every request in a collection",
		Long: "Execute all requests in a collection sequentially and report results. " +
			"With --script a JavaScript test file is evaluated against every response; " +
			"the command exits non-zero when any request or assertion fails.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			return runCollection(cmd, e, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scriptPath, "script", "s", "", "JavaScript test file run against each response")
	return cmd
}

func runCollection(cmd *cobra.Command, e *env, nameOrID string, opts *runOptions) error {
	ctx := context.Background()

	coll, err := findCollection(ctx, e, nameOrID)
	if err != nil {
		return err
	}
	requests, err := e.store.ListRequestsByCollection(ctx, coll.ID)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Collection %q has no requests\n", coll.Name)
		return nil
	}

	runnerOpts := []runner.Option{
		runner.WithProgress(func(current, total int, result *runner.Result) {
			mark := "ok"
			if !result.Passed() {
				mark = "FAIL"
			}
			status := "-"
			if result.Response != nil {
				status = result.Response.StatusText
				if result.Response.StatusCode > 0 {
					status = fmt.Sprintf("%d", result.Response.StatusCode)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %-4s %s %s (%s)\n",
				current, total, mark, result.Method, result.URL, status)
			for _, tr := range result.Tests {
				if !tr.Passed {
					fmt.Fprintf(cmd.OutOrStdout(), "       test %q: %s\n", tr.Name, tr.Message)
				}
			}
		}),
	}
	if opts.scriptPath != "" {
		source, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return fmt.Errorf("read script %s: %w", opts.scriptPath, err)
		}
		runnerOpts = append(runnerOpts, runner.WithTestScript(string(source)))
	}

	summary := runner.New(e.app(), runnerOpts...).Run(ctx, *coll, requests)

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d/%d passed, %d tests (%d failed) in %s\n",
		summary.CollectionName, summary.Passed, summary.Executed,
		summary.TestsPassed+summary.TestsFailed, summary.TestsFailed,
		summary.Elapsed.Round(time.Millisecond))

	if !summary.AllPassed() {
		return fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Executed)
	}
	return nil
}

// findCollection resolves an argument as a collection ID first, then as a
// unique name.
func findCollection(ctx context.Context, e *env, nameOrID string) (*core.CollectionRecord, error) {
	if rec, err := e.store.GetCollection(ctx, nameOrID); err == nil {
		return &rec, nil
	}
	colls, err := e.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	var match *core.CollectionRecord
	for i := range colls {
		if colls[i].Name == nameOrID {
			if match != nil {
				return nil, fmt.Errorf("collection name %q is ambiguous, use its ID", nameOrID)
			}
			match = &colls[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("collection %q not found", nameOrID)
	}
	return match, nil
}
