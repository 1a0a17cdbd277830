// Package cli implements the hermes command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hermeshq/hermes/internal/app"
	"github.com/hermeshq/hermes/internal/config"
	"github.com/hermeshq/hermes/internal/executor"
	"github.com/hermeshq/hermes/internal/logging"
	"github.com/hermeshq/hermes/internal/storage/sqlite"
	"github.com/hermeshq/hermes/internal/tui"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dataDir    string
	verbose    bool
}

// env bundles the wired dependencies a command runs against.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	store  *sqlite.Store
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.logger != nil {
		logging.Sync(e.logger)
	}
}

func (e *env) app() *app.App {
	execOpts := []executor.Option{
		executor.WithTimeout(e.cfg.Timeout),
		executor.WithProxyEndpoint(e.cfg.ProxyEndpoint),
	}
	if !e.cfg.FollowRedirects {
		execOpts = append(execOpts, executor.WithNoRedirects())
	}
	exec := executor.New(execOpts...)
	return app.New(
		app.WithStore(e.store),
		app.WithExecutor(exec),
		app.WithLogger(e.logger),
	)
}

// build loads config, opens the store and configures logging.
func (o *rootOptions) build() (*env, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}

	logCfg := logging.FromEnv()
	logCfg.Level = cfg.LogLevel
	if o.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := sqlite.New(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, store: store}, nil
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "hermes",
		Short:   "Hermes - a terminal API client",
		Long:    "Hermes is a terminal API testing client: compose and send requests, manage environments, and exchange data with Postman and curl.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.build()
			if err != nil {
				return err
			}
			defer e.close()
			return runTUI(e)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Override the data directory")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newSendCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newEnvCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newListenCommand())

	return cmd
}

func runTUI(e *env) error {
	model := tui.NewModel(e.app())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// parseHeaderFlags turns repeated "Key: Value" flags into a map.
func parseHeaderFlags(flags []string) map[string]string {
	headers := make(map[string]string)
	for _, h := range flags {
		if idx := strings.Index(h, ":"); idx > 0 {
			key := strings.TrimSpace(h[:idx])
			value := strings.TrimSpace(h[idx+1:])
			headers[key] = value
		}
	}
	return headers
}
