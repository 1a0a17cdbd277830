package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/core"
)

func newEnvCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage environments",
		Long:  "List, create and switch environments. Variables from the active environment are substituted into requests as {{name}} placeholders.",
	}

	cmd.AddCommand(
		newEnvListCommand(root),
		newEnvCreateCommand(root),
		newEnvUseCommand(root),
		newEnvSetCommand(root),
		newEnvDeleteCommand(root),
	)
	return cmd
}

func newEnvListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()

			envs, err := e.store.ListEnvironments(context.Background())
			if err != nil {
				return err
			}
			if len(envs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No environments")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVARS\tACTIVE")
			for _, env := range envs {
				active := ""
				if env.IsActive {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", env.ID, env.Name, len(env.Variables), active)
			}
			return w.Flush()
		},
	}
}

func newEnvCreateCommand(root *rootOptions) *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()

			env := core.NewEnvironmentRecord(args[0])
			for _, v := range vars {
				if idx := strings.Index(v, "="); idx > 0 {
					env.SetVariable(v[:idx], v[idx+1:])
				}
			}
			created, err := e.store.AddEnvironment(context.Background(), env)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created environment %q (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&vars, "var", "V", nil, "Initial variable (format: name=value)")
	return cmd
}

func newEnvUseCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use [NAME]",
		Short: "Set the active environment, or clear it with no argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			if len(args) == 0 {
				if err := e.store.ClearActiveEnvironment(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Active environment cleared")
				return nil
			}

			env, err := findEnvironment(ctx, e, args[0])
			if err != nil {
				return err
			}
			if err := e.store.SetActiveEnvironment(ctx, env.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using environment %q\n", env.Name)
			return nil
		},
	}
}

func newEnvSetCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VAR=VALUE [VAR=VALUE...]",
		Short: "Set variables on an environment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			env, err := findEnvironment(ctx, e, args[0])
			if err != nil {
				return err
			}
			for _, v := range args[1:] {
				idx := strings.Index(v, "=")
				if idx <= 0 {
					return fmt.Errorf("invalid variable %q, expected name=value", v)
				}
				env.SetVariable(v[:idx], v[idx+1:])
			}
			if err := e.store.UpdateEnvironment(ctx, *env); err != nil {
				return err
			}

			keys := make([]string, 0, len(env.Variables))
			for k := range env.Variables {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(cmd.OutOrStdout(), "Environment %q: %s\n", env.Name, strings.Join(keys, ", "))
			return nil
		},
	}
}

func newEnvDeleteCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			env, err := findEnvironment(ctx, e, args[0])
			if err != nil {
				return err
			}
			if err := e.store.DeleteEnvironment(ctx, env.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted environment %q\n", env.Name)
			return nil
		},
	}
}

// findEnvironment resolves an argument as an environment ID first, then as a
// unique name.
func findEnvironment(ctx context.Context, e *env, nameOrID string) (*core.EnvironmentRecord, error) {
	if rec, err := e.store.GetEnvironment(ctx, nameOrID); err == nil {
		return &rec, nil
	}
	envs, err := e.store.ListEnvironments(ctx)
	if err != nil {
		return nil, err
	}
	var match *core.EnvironmentRecord
	for i := range envs {
		if envs[i].Name == nameOrID {
			if match != nil {
				return nil, fmt.Errorf("environment name %q is ambiguous, use its ID", nameOrID)
			}
			match = &envs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("environment %q not found", nameOrID)
	}
	return match, nil
}
