package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"montage/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	results = append(results, CheckRecordSource(ctx, cfg.Paths.Records))
	results = append(results, CheckOutputLocation("Output", cfg.Paths.Output))
	if cfg.Paths.Manifest != "" {
		results = append(results, CheckOutputLocation("Manifest", cfg.Paths.Manifest))
	}
	results = append(results, CheckFreeSpace("Output space", cfg.Paths.Output, EstimateOutputBytes(cfg)))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckOutputLocation("Log directory", filepath.Join(cfg.Paths.LogDir, "montage.log")))
	}

	for _, status := range CheckSystemDeps(cfg) {
		res := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case status.Available:
			res.Detail = status.Command
		case status.Optional:
			res.Detail = fmt.Sprintf("%s (optional: %s)", status.Detail, strings.ToLower(status.Description))
		default:
			res.Detail = status.Detail
		}
		results = append(results, res)
	}
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
