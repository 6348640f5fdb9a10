package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"montage/internal/record"
)

const maxStatsLabels = 12

const missingValue = "(missing)"

type statsField struct {
	name  string
	label string
}

var defaultStatsFields = []statsField{
	{"instrument_family_str", "Family"},
	{"instrument_source_str", "Source"},
	{"pitch", "Pitch"},
	{"qualities_str", "Quality"},
	{"velocity", "Velocity"},
	{"instrument", "Unique instrument"},
}

type valueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type numericSummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type fieldStats struct {
	Field    string          `json:"field"`
	Label    string          `json:"label"`
	Distinct int             `json:"distinct"`
	Counts   []valueCount    `json:"counts"`
	Numeric  *numericSummary `json:"numeric,omitempty"`
}

type statsOutput struct {
	Source      string       `json:"source"`
	Loaded      int          `json:"loaded"`
	Matched     int          `json:"matched"`
	UniqueField string       `json:"unique_field,omitempty"`
	Unique      int          `json:"unique"`
	Fields      []fieldStats `json:"fields"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var selection selectionFlags
	var fieldsFlag string
	var uniqueField string
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count field values across the selected records",
		Long: `Count how often each value of a field occurs among the records a compose
would use. List fields count every item. Fields with more distinct values than
--top show the most common ones, and numeric fields add min, max, and mean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			selection.apply(cmd, cfg)
			if err := finalizeOverrides(cfg); err != nil {
				return err
			}
			if top <= 0 {
				return fmt.Errorf("--top must be > 0")
			}

			loaded, matched, err := selectForCommand(cmd, cfg)
			if err != nil {
				return err
			}

			fields := defaultStatsFields
			if strings.TrimSpace(fieldsFlag) != "" {
				fields = nil
				for _, name := range splitFields(fieldsFlag) {
					fields = append(fields, statsField{name: name, label: fieldLabel(name)})
				}
			}

			out := statsOutput{
				Source:      cfg.Paths.Records,
				Loaded:      loaded,
				Matched:     len(matched),
				UniqueField: strings.TrimSpace(uniqueField),
				Fields:      make([]fieldStats, 0, len(fields)),
			}
			if out.UniqueField != "" {
				out.Unique = countUnique(matched, out.UniqueField)
			}
			if len(matched) > 0 {
				for _, field := range fields {
					out.Fields = append(out.Fields, computeFieldStats(matched, field))
				}
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			printStats(cmd.OutOrStdout(), cfg.Query.Filters, out, top)
			return nil
		},
	}

	selection.register(cmd)
	cmd.Flags().StringVar(&fieldsFlag, "fields", "", "Comma-separated fields to count (default: family, source, pitch, quality, velocity, instrument)")
	cmd.Flags().StringVar(&uniqueField, "unique", "instrument_str", "Field whose distinct values are counted in the summary line")
	cmd.Flags().IntVar(&top, "top", maxStatsLabels, "Most common values listed per field")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printStats(w io.Writer, filters []string, out statsOutput, top int) {
	fmt.Fprintf(w, "Loaded %s with %s entries\n", out.Source, humanize.Comma(int64(out.Loaded)))
	if len(filters) > 0 {
		fmt.Fprintf(w, "Found %s records after filtering.\n", humanize.Comma(int64(out.Matched)))
	}
	if out.Matched == 0 {
		return
	}
	if out.UniqueField != "" {
		fmt.Fprintf(w, "%d unique %s found.\n", out.Unique, uniqueNoun(out.UniqueField))
	}
	for _, fs := range out.Fields {
		shown := fs.Counts
		if len(shown) > top {
			shown = shown[:top]
		}
		rows := make([][]string, 0, len(shown))
		for _, vc := range shown {
			rows = append(rows, []string{vc.Value, humanize.Comma(int64(vc.Count))})
		}
		footer := []string{fmt.Sprintf("%d distinct", fs.Distinct), ""}
		if fs.Distinct > len(shown) {
			footer[0] = fmt.Sprintf("%d more of %d distinct", fs.Distinct-len(shown), fs.Distinct)
		}
		if fs.Numeric != nil {
			footer[1] = fmt.Sprintf("min %s max %s mean %s",
				formatStat(fs.Numeric.Min), formatStat(fs.Numeric.Max), formatStat(fs.Numeric.Mean))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable(tableLayout{
			Title:   fs.Label,
			Headers: []string{"Value", "Count"},
			Aligns:  []columnAlignment{alignLeft, alignRight},
			Rows:    rows,
			Footer:  footer,
		}))
	}
}

// computeFieldStats counts values of one field. Lists contribute each item;
// records without the field count as missing. Counts are ordered by frequency,
// then by value so the listing is stable.
func computeFieldStats(records []record.Record, field statsField) fieldStats {
	counts := make(map[string]int)
	numeric := true
	var seen int
	var sum float64
	var summary numericSummary
	for _, rec := range records {
		value, ok := rec.Field(field.name)
		if !ok {
			counts[missingValue]++
			continue
		}
		if value.Kind() == record.KindList {
			numeric = false
			for _, item := range value.Items() {
				counts[item]++
			}
			continue
		}
		counts[value.Text()]++
		f, isNum := value.Float()
		if !isNum {
			numeric = false
			continue
		}
		if seen == 0 || f < summary.Min {
			summary.Min = f
		}
		if seen == 0 || f > summary.Max {
			summary.Max = f
		}
		sum += f
		seen++
	}

	fs := fieldStats{Field: field.name, Label: field.label, Distinct: len(counts)}
	fs.Counts = make([]valueCount, 0, len(counts))
	for value, count := range counts {
		fs.Counts = append(fs.Counts, valueCount{Value: value, Count: count})
	}
	slices.SortFunc(fs.Counts, func(a, b valueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return compareLabels(a.Value, b.Value)
	})
	if numeric && seen > 0 {
		summary.Mean = sum / float64(seen)
		fs.Numeric = &summary
	}
	return fs
}

func compareLabels(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(a, b)
}

func countUnique(records []record.Record, field string) int {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if value, ok := rec.Field(field); ok {
			seen[value.Text()] = struct{}{}
		}
	}
	return len(seen)
}

// fieldLabel turns a field name such as instrument_family_str into
// "Instrument Family".
func fieldLabel(name string) string {
	base := strings.TrimSuffix(name, "_str")
	return cases.Title(language.English).String(strings.ReplaceAll(base, "_", " "))
}

func uniqueNoun(field string) string {
	base := strings.TrimSuffix(field, "_str")
	base = strings.ReplaceAll(base, "_", " ")
	if strings.HasSuffix(base, "s") {
		return base
	}
	return base + "s"
}

func formatStat(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}
