package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ontodev/units-demo/pkg/ucum"
	"github.com/ontodev/units-demo/pkg/units"
)

func unitsCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List the atomic units of the current table",
		Long: `List every atomic unit with its definition and canonical SI code.

Example:
  ucum units
  ucum units --property pressure
  ucum units --metric`,
		RunE: func(cmd *cobra.Command, args []string) error {
			property, _ := cmd.Flags().GetString("property")
			metricOnly, _ := cmd.Flags().GetBool("metric")

			engine := state.engine()
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "SYMBOL\tNAME\tPROPERTY\tMETRIC\tDEFINITION\tSI")

			for _, unit := range engine.Table().Units() {
				if metricOnly && !unit.Metric {
					continue
				}
				if property != "" && !strings.Contains(strings.ToLower(unit.Property), strings.ToLower(property)) {
					continue
				}

				si := "-"
				if resolution, err := engine.Resolve(ucum.Term{Unit: unit, Exponent: 1}); err == nil {
					si = resolution.Dimensions.String()
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%t\t%s\t%s\n",
					unit.Symbol, unit.Name, unit.Property, unit.Metric, unitDefinition(unit), si)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().String("property", "", "Only list units whose property contains this text")
	cmd.Flags().Bool("metric", false, "Only list units that accept a prefix")

	return cmd
}

func unitDefinition(unit units.Unit) string {
	switch {
	case unit.IsBase():
		return "base " + unit.Base.Name()
	case unit.IsAffine():
		return fmt.Sprintf("%g %s + %g", unit.Scale, unit.Definition, unit.OffsetValue())
	case unit.Scale != 1:
		return fmt.Sprintf("%g %s", unit.Scale, unit.Definition)
	default:
		return unit.Definition
	}
}

func prefixesCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prefixes",
		Short: "List the decimal prefixes of the current table",
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "SYMBOL\tNAME\tFACTOR")
			for _, prefix := range state.registry.Snapshot().Prefixes() {
				fmt.Fprintf(writer, "%s\t%s\t1e%d\n", prefix.Symbol, prefix.Name, prefix.Exponent)
			}
			return writer.Flush()
		},
	}
}

func tablesCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect and validate unit tables",
	}

	cmd.AddCommand(tablesValidateCmd(state))
	cmd.AddCommand(tablesDumpCmd(state))
	cmd.AddCommand(tablesWatchCmd(state))

	return cmd
}

func tablesValidateCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check that table files build and every unit resolves",
		Long: `Overlay the given YAML table files onto the built-in table and resolve
every unit. Without arguments the current table (built-in plus tables_dir)
is checked.

Example:
  ucum tables validate custom.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := state.registry.Snapshot()
			if len(args) > 0 {
				specs := []units.TableSpec{table.Spec()}
				for _, path := range args {
					spec, err := units.LoadSpecFile(path)
					if err != nil {
						return err
					}
					specs = append(specs, spec)
				}
				built, err := units.Build(specs...)
				if err != nil {
					return fmt.Errorf("building table: %w", err)
				}
				table = built
			}

			if err := ucum.ValidateTable(table, ucum.WithMaxDepth(state.config.MaxDepth)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d units, %d prefixes\n", table.Len(), len(table.Prefixes()))
			return nil
		},
	}
}

func tablesDumpCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the current table as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(state.registry.Snapshot().Spec()); err != nil {
				return fmt.Errorf("encoding table: %w", err)
			}
			return encoder.Close()
		},
	}
}

func tablesWatchCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload tables_dir whenever a table file changes",
		Long: `Watch the configured tables directory and rebuild the unit table on every
change. Rejected tables are reported and the previous table stays active.
Stop with Ctrl-C.

Example:
  ucum --tables-dir ./tables tables watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.config.TablesDir == "" {
				return fmt.Errorf("tables_dir is not configured (use --tables-dir)")
			}

			out := cmd.OutOrStdout()
			state.registry.SetOnChange(func(table *units.Table, err error) {
				if err != nil {
					fmt.Fprintf(out, "rejected: %v\n", err)
					return
				}
				fmt.Fprintf(out, "reloaded: %d units\n", table.Len())
			})

			if err := state.registry.Watch(); err != nil {
				return err
			}
			defer state.registry.StopWatch()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			state.logger.Info("Watching unit tables", slog.String("dir", state.config.TablesDir))
			<-ctx.Done()
			return nil
		},
	}
}
