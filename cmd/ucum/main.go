package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontodev/units-demo/pkg/config"
	"github.com/ontodev/units-demo/pkg/ucum"
	"github.com/ontodev/units-demo/pkg/units"
)

var version = "0.1.0"

// app is the state shared by every command once the root pre-run has
// loaded configuration and tables.
type app struct {
	config   *config.Config
	logger   *slog.Logger
	registry *units.Registry
}

// engine builds an engine over the current table snapshot.
func (a *app) engine() *ucum.Engine {
	return ucum.NewEngine(a.registry.Snapshot(), ucum.WithMaxDepth(a.config.MaxDepth))
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	state := &app{}

	cmd := &cobra.Command{
		Use:   "ucum",
		Short: "UCUM to SI canonicalizer and OWL individual generator",
		Long: `ucum reduces UCUM unit codes to a canonical SI form and publishes each
distinct form as an OWL named individual.

Codes that measure the same kind of quantity share one individual:
"m/s" and "m.s-1" both become <https://w3id.org/units/m.s-1>.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.setup(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (default: ucum.yaml in the current or a parent directory)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("tables-dir", "", "Directory of YAML unit tables overlaid onto the built-in table")
	cmd.PersistentFlags().Int("max-depth", 0, "Maximum derived-unit resolution depth")

	cmd.AddCommand(convertCmd(state))
	cmd.AddCommand(canonicalizeCmd(state))
	cmd.AddCommand(parseCmd(state))
	cmd.AddCommand(unitsCmd(state))
	cmd.AddCommand(prefixesCmd(state))
	cmd.AddCommand(tablesCmd(state))
	cmd.AddCommand(examplesCmd(state))

	return cmd
}

// setup loads the config, applies flag overrides, configures logging and
// builds the unit table registry.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")

	bootstrap := newLogger(os.Getenv("UCUM_LOG_LEVEL"))
	cfg, err := config.NewLoader(bootstrap).Load(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("tables-dir") {
		cfg.TablesDir, _ = cmd.Flags().GetString("tables-dir")
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.config = cfg
	a.logger = newLogger(cfg.LogLevel)
	slog.SetDefault(a.logger)

	base, err := units.Default()
	if err != nil {
		return fmt.Errorf("loading built-in unit table: %w", err)
	}
	a.registry = units.NewRegistry(base, a.logger)
	a.registry.SetValidator(func(table *units.Table) error {
		return ucum.ValidateTable(table, ucum.WithMaxDepth(cfg.MaxDepth))
	})
	if cfg.TablesDir != "" {
		if err := a.registry.LoadDirectory(cfg.TablesDir); err != nil {
			return fmt.Errorf("loading unit tables from %s: %w", cfg.TablesDir, err)
		}
		a.logger.Debug("Loaded unit tables",
			slog.String("dir", cfg.TablesDir),
			slog.Int("units", a.registry.Snapshot().Len()))
	}

	return nil
}

func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
