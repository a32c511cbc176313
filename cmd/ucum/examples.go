package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// exampleCodes are the demonstration inputs shown by the examples command.
var exampleCodes = []string{
	"/A/s3/cg3/T3",
	"/g",
	"/m3",
	"%",
	"aBq",
	"Cel.d-1",
	"dL/g",
	"dlm",
	"dlx",
	"Em.s-2",
	"g.cm-3",
	"K2",
	"kW/h",
	"m/s",
	"m.s-2",
	"m/s/d",
	"mmol.mL-1",
	"mol.L-1",
	"mol.um",
	"ng-1",
	"pA",
	"ug.mL-1",
	"umol.L-1",
	"us",
	"Wb",
}

func examplesCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List example UCUM codes with their normalized and SI forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := state.engine()
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "CODE\tNORMALIZED\tSI")
			for _, code := range exampleCodes {
				canonical, err := engine.Canonicalize(code)
				if err != nil {
					fmt.Fprintf(writer, "%s\t-\terror: %v\n", code, err)
					continue
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", code, canonical.Source, canonical.Code)
			}
			return writer.Flush()
		},
	}
}
