package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-profiler/internal/table"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var profileFlags struct {
	semantic         string
	data             string
	kind             string
	sheet            string
	table            string
	format           string
	includeSemantics bool
	explain          bool
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Infer the geo profile of a single dataset",
	Example: `  geo-profiler profile --semantic 311.txt --data 311.csv
  geo-profiler profile --semantic parks.txt --data parks.zip --format json --explain
  geo-profiler profile --semantic permits.txt --data postgres:opendata.permits`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("profile"); err != nil {
			return err
		}
		out := outputOptions{
			Format:           profileFlags.format,
			IncludeSemantics: profileFlags.includeSemantics,
			Explain:          profileFlags.explain,
		}
		if err := validateFormat(out.Format); err != nil {
			return err
		}

		loader := newSourceLoader(cfg)
		defer loader.Close()

		job := datasetJob{
			SemanticPath: profileFlags.semantic,
			Source: table.Source{
				Path:  profileFlags.data,
				Kind:  profileFlags.kind,
				Sheet: profileFlags.sheet,
				Table: profileFlags.table,
			},
		}

		res, err := profileJob(ctx, newProfiler(cfg), loader, job, out)
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), []profileResult{*res}, out.Format)
	},
}

func init() {
	f := profileCmd.Flags()
	f.StringVar(&profileFlags.semantic, "semantic", "", "path to the semantic profile text")
	f.StringVar(&profileFlags.data, "data", "", "dataset path or http(s) URL (csv, tsv, xlsx, shp, zip, geojson, sqlite) or postgres:<schema.table>")
	f.StringVar(&profileFlags.kind, "kind", "", "source kind, detected from --data when empty")
	f.StringVar(&profileFlags.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	f.StringVar(&profileFlags.table, "table", "", "SQLite or PostgreSQL table name")
	f.StringVar(&profileFlags.format, "format", formatText, "output format: text, json, or yaml")
	f.BoolVar(&profileFlags.includeSemantics, "include-semantics", false, "include parsed column semantics in the output")
	f.BoolVar(&profileFlags.explain, "explain", false, "report which rule decided each classification")
	_ = profileCmd.MarkFlagRequired("semantic")
	_ = profileCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(profileCmd)
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return eris.Errorf("unknown output format %q (want text, json, or yaml)", format)
}

// writeResults encodes results in format. A single JSON or YAML result is
// written as an object, several as a list.
func writeResults(w io.Writer, results []profileResult, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		return eris.Wrap(enc.Encode(v), "encode json")

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")

	case formatText:
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprint(w, renderText(res, len(results) > 1))
		}
		return nil
	}
	return validateFormat(format)
}

// renderText formats one result as the plain-text profile block, optionally
// followed by column semantics and the rule trace.
func renderText(res profileResult, withName bool) string {
	var b strings.Builder
	if withName && res.Dataset != "" {
		fmt.Fprintf(&b, "# %s\n", res.Dataset)
	}
	if res.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", res.Error)
		return b.String()
	}

	b.WriteString(res.GeoProfile.Render())
	b.WriteString("\n")

	if res.Semantics != nil {
		b.WriteString("\nColumns:\n")
		for _, c := range res.Semantics.Columns {
			var tags []string
			if c.IsSpatial {
				tag := "spatial"
				if c.SpatialResolution != "" {
					tag += " (" + c.SpatialResolution + ")"
				}
				tags = append(tags, tag)
			}
			if c.IsTemporal {
				tags = append(tags, "temporal")
			}
			if c.DomainType != "" {
				tags = append(tags, "type: "+c.DomainType)
			}
			fmt.Fprintf(&b, "  %s: %s\n", c.Name, strings.Join(tags, "; "))
		}
	}

	if ex := res.Explanation; ex != nil {
		levels := make([]string, len(ex.ResolutionLevels))
		for i, l := range ex.ResolutionLevels {
			levels[i] = string(l)
		}
		b.WriteString("\nExplanation:\n")
		fmt.Fprintf(&b, "  Role rule: %s\n", ex.RoleRule)
		fmt.Fprintf(&b, "  Geometry rule: %s\n", ex.GeometryRule)
		fmt.Fprintf(&b, "  Resolution levels: %s\n", strings.Join(levels, ", "))
		fmt.Fprintf(&b, "  Use case family: %s\n", ex.UseCaseFamily)
	}
	return b.String()
}
