package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"montage/internal/config"
	"montage/internal/pipeline"
	"montage/internal/record"
	"montage/internal/recordstore"
)

type queryRow struct {
	Key    string                  `json:"key"`
	Fields map[string]record.Value `json:"fields"`
}

type queryOutput struct {
	Source  string     `json:"source"`
	Loaded  int        `json:"loaded"`
	Matched int        `json:"matched"`
	Records []queryRow `json:"records"`
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var selection selectionFlags
	var fieldsFlag string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List the records a compose would place, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			selection.apply(cmd, cfg)
			if err := finalizeOverrides(cfg); err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}

			loaded, matched, err := selectForCommand(cmd, cfg)
			if err != nil {
				return err
			}
			shown := matched
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			columns := queryColumns(cfg, fieldsFlag)

			if jsonOutput {
				out := queryOutput{
					Source:  cfg.Paths.Records,
					Loaded:  loaded,
					Matched: len(matched),
					Records: make([]queryRow, 0, len(shown)),
				}
				for _, rec := range shown {
					out.Records = append(out.Records, queryRow{Key: rec.Key, Fields: projectFields(rec, columns)})
				}
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(w, "No records matched.")
				return nil
			}
			headers := append([]string{"#", "Key"}, columns...)
			aligns := []columnAlignment{alignRight, alignLeft}
			rows := make([][]string, 0, len(shown))
			for i, rec := range shown {
				row := []string{strconv.Itoa(i + 1), rec.Key}
				for _, name := range columns {
					value, _ := rec.Field(name)
					row = append(row, value.Text())
				}
				rows = append(rows, row)
			}
			footer := []string{"", fmt.Sprintf("%d of %d", len(shown), len(matched))}
			fmt.Fprintln(w, renderTable(tableLayout{
				Headers: headers,
				Aligns:  aligns,
				Rows:    rows,
				Footer:  footer,
			}))
			return nil
		},
	}

	selection.register(cmd)
	cmd.Flags().StringVar(&fieldsFlag, "fields", "", "Comma-separated fields to show (default: key, filter, and sort fields)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many records (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// selectForCommand loads the configured store and applies the configured
// query exactly as compose would.
func selectForCommand(cmd *cobra.Command, cfg *config.Config) (int, []record.Record, error) {
	q, err := pipeline.Query(cfg)
	if err != nil {
		return 0, nil, err
	}
	records, err := recordstore.Load(cmd.Context(), cfg.Paths.Records)
	if err != nil {
		return 0, nil, err
	}
	matched, err := pipeline.Select(records, q, cfg.Query.KeyField)
	if err != nil {
		return 0, nil, err
	}
	return len(records), matched, nil
}

func queryColumns(cfg *config.Config, fieldsFlag string) []string {
	if strings.TrimSpace(fieldsFlag) != "" {
		return splitFields(fieldsFlag)
	}
	var columns []string
	if cfg.Query.KeyField != "" {
		columns = append(columns, cfg.Query.KeyField)
	}
	if q, err := pipeline.Query(cfg); err == nil {
		for _, name := range q.Fields() {
			if !slices.Contains(columns, name) {
				columns = append(columns, name)
			}
		}
	}
	return columns
}

func projectFields(rec record.Record, columns []string) map[string]record.Value {
	out := make(map[string]record.Value, len(columns))
	for _, name := range columns {
		if value, ok := rec.Field(name); ok {
			out[name] = value
		}
	}
	return out
}

func splitFields(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}
