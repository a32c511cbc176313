package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ontodev/units-demo/pkg/convert"
	"github.com/ontodev/units-demo/pkg/store"
	"github.com/ontodev/units-demo/pkg/ucum"
)

func convertCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [code...]",
		Short: "Convert UCUM codes into OWL named individuals",
		Long: `Convert UCUM codes into OWL named individuals and serialize the graph.

Codes are taken from the arguments and from every file matched by
--input-glob (one code per line, '#' starts a comment). Percent-encoded
codes such as "m%2Fs" are decoded unless --decode=false.

Supported formats:
  - turtle (ttl):    W3C Turtle
  - jsonld (json-ld): JSON-LD with an @context built from the graph prefixes
  - ntriples (nt):   N-Triples
  - rdfxml (xml):    RDF/XML
  - dot:             Graphviz DOT

Example:
  ucum convert m/s
  ucum convert --format json-ld kW/h Cel.d-1
  ucum convert --input-glob 'codes/**/*.txt' --fail-on-error=false --output units.ttl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			expanded, _ := cmd.Flags().GetBool("expanded")
			decode, _ := cmd.Flags().GetBool("decode")
			patterns, _ := cmd.Flags().GetStringSlice("input-glob")

			cfg := state.config
			if cmd.Flags().Changed("base-iri") {
				cfg.BaseIRI, _ = cmd.Flags().GetString("base-iri")
			}
			if cmd.Flags().Changed("fail-on-error") {
				cfg.FailOnError, _ = cmd.Flags().GetBool("fail-on-error")
			}
			if cmd.Flags().Changed("derivation-links") {
				cfg.DerivationLinks, _ = cmd.Flags().GetBool("derivation-links")
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
			}
			if formatName == "" {
				formatName = cfg.Format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			format, err := store.ParseFormat(formatName)
			if err != nil {
				return err
			}

			codes := append([]string(nil), args...)
			if len(patterns) > 0 {
				fileCodes, err := readCodeFiles(cmd.Context(), patterns)
				if err != nil {
					return err
				}
				codes = append(codes, fileCodes...)
			}
			if len(codes) == 0 {
				return errors.New("A UCUM code is required.")
			}
			if decode {
				codes = decodeCodes(codes)
			}

			var registry *prometheus.Registry
			options := []convert.Option{
				convert.WithBaseIRI(cfg.BaseIRI),
				convert.WithFailOnError(cfg.FailOnError),
				convert.WithDerivationLinks(cfg.DerivationLinks),
				convert.WithLogger(state.logger),
			}
			if cfg.MetricsFile != "" {
				registry = prometheus.NewRegistry()
				options = append(options, convert.WithMetrics(convert.NewMetrics(registry)))
			}

			builder := convert.NewBuilder(state.engine(), options...)
			result, err := builder.Convert(codes)
			if registry != nil {
				if writeErr := prometheus.WriteToTextfile(cfg.MetricsFile, registry); writeErr != nil {
					state.logger.Warn("Failed to write metrics", slog.String("path", cfg.MetricsFile), slog.String("error", writeErr.Error()))
				}
			}
			if err != nil {
				return invalidCodeError(err)
			}

			for _, code := range result.Codes {
				state.logger.Info("Converted UCUM code",
					slog.String("code", code),
					slog.String("subject", result.Subjects[code]))
			}
			if result.SkippedCount() > 0 {
				state.logger.Warn("Skipped invalid UCUM codes", slog.Int("count", result.SkippedCount()))
			}

			var jsonldOptions []store.JSONLDOption
			if expanded {
				jsonldOptions = append(jsonldOptions, store.WithExpandedForm())
			}
			data, err := store.Serialize(result.Graph, format, jsonldOptions...)
			if err != nil {
				return fmt.Errorf("failed to serialize graph: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format (turtle, jsonld, ntriples, rdfxml, dot; default from config)")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().Bool("expanded", false, "Output expanded JSON-LD (full IRIs, no @context) instead of compact form")
	cmd.Flags().String("base-iri", "", "Base IRI for individuals and unit predicates")
	cmd.Flags().Bool("fail-on-error", true, "Abort on the first invalid code instead of skipping it")
	cmd.Flags().Bool("derivation-links", false, "Link individuals to the SI base units they derive from")
	cmd.Flags().StringSlice("input-glob", nil, "Read codes from files matching these glob patterns (supports **)")
	cmd.Flags().Bool("decode", true, "Percent-decode codes before conversion")
	cmd.Flags().String("metrics-file", "", "Write conversion metrics in Prometheus text format to this file")

	return cmd
}

func canonicalizeCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize <code...>",
		Short: "Print the canonical SI form of UCUM codes",
		Long: `Print the normalized UCUM code, the canonical SI code, the multiplier to
SI and, for affine units, the offset.

Example:
  ucum canonicalize kW/h Cel Cel.d-1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := state.engine()
			out := cmd.OutOrStdout()

			for _, code := range args {
				canonical, err := engine.Canonicalize(code)
				if err != nil {
					return invalidCodeError(&convert.InputError{Code: code, Err: err})
				}

				fmt.Fprintf(out, "%-16s %-16s %-16s %g", code, canonical.Source, canonical.Code, canonical.Multiplier)
				switch {
				case canonical.Affine:
					fmt.Fprintf(out, " offset=%g", canonical.Offset)
				case canonical.OffsetDropped:
					fmt.Fprint(out, " (offset dropped)")
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func parseCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <code>",
		Short: "Show the terms of a UCUM code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expression, err := state.engine().Parse(args[0])
			if err != nil {
				return invalidCodeError(&convert.InputError{Code: args[0], Err: err})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code:       %s\n", expression.Code)
			fmt.Fprintf(out, "Normalized: %s\n", expression.String())
			fmt.Fprintln(out, "Terms:")
			for _, term := range expression.Terms {
				if term.IsFactor() {
					fmt.Fprintf(out, "  factor %d (exponent %d)\n", term.Factor, term.Exponent)
					continue
				}
				prefix := "-"
				if term.Prefix != nil {
					prefix = fmt.Sprintf("%s (%s, 1e%d)", term.Prefix.Symbol, term.Prefix.Name, term.Prefix.Exponent)
				}
				fmt.Fprintf(out, "  %-8s prefix=%s unit=%s (%s) exponent=%d\n",
					term.String(), prefix, term.Unit.Symbol, term.Unit.Name, term.Exponent)
			}
			return nil
		},
	}
}

// invalidCodeError reports invalid input the same way for every command and
// keeps the detailed cause in the debug log.
func invalidCodeError(err error) error {
	var inputErr *convert.InputError
	if errors.As(err, &inputErr) && ucum.IsInvalidCode(err) {
		slog.Debug("Invalid UCUM code", slog.String("code", inputErr.Code), slog.String("error", inputErr.Err.Error()))
		return fmt.Errorf("'%s' is not a valid UCUM code.", inputErr.Code)
	}
	return err
}

func decodeCodes(codes []string) []string {
	decoded := make([]string, len(codes))
	for index, code := range codes {
		decoded[index] = unquotePlus(code)
	}
	return decoded
}

// unquotePlus decodes form-encoded text leniently: "+" becomes a space and
// "%XX" with two hex digits becomes its byte. Any other "%" is kept, so the
// UCUM percent units "%" and "g%" pass through unchanged.
func unquotePlus(text string) string {
	if !strings.ContainsAny(text, "%+") {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for index := 0; index < len(text); index++ {
		switch char := text[index]; {
		case char == '+':
			builder.WriteByte(' ')
		case char == '%' && index+2 < len(text) && isHex(text[index+1]) && isHex(text[index+2]):
			builder.WriteByte(unhex(text[index+1])<<4 | unhex(text[index+2]))
			index += 2
		default:
			builder.WriteByte(char)
		}
	}
	return builder.String()
}

func isHex(char byte) bool {
	return ('0' <= char && char <= '9') || ('a' <= char && char <= 'f') || ('A' <= char && char <= 'F')
}

func unhex(char byte) byte {
	switch {
	case '0' <= char && char <= '9':
		return char - '0'
	case 'a' <= char && char <= 'f':
		return char - 'a' + 10
	default:
		return char - 'A' + 10
	}
}

// readCodeFiles expands the glob patterns and reads the matched files
// concurrently. Codes keep the order of the sorted file list.
func readCodeFiles(ctx context.Context, patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %s", strings.Join(patterns, ", "))
	}
	sort.Strings(paths)

	if ctx == nil {
		ctx = context.Background()
	}
	perFile := make([][]string, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for index, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			codes, err := readCodeFile(path)
			if err != nil {
				return err
			}
			perFile[index] = codes
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var codes []string
	for _, fileCodes := range perFile {
		codes = append(codes, fileCodes...)
	}
	return codes, nil
}

func readCodeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer file.Close()

	var codes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if comment := strings.Index(line, "#"); comment >= 0 {
			line = line[:comment]
		}
		if line = strings.TrimSpace(line); line != "" {
			codes = append(codes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return codes, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("Wrote graph", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}
