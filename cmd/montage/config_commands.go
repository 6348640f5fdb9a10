package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"montage/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.records and paths.audio_pattern to your sample corpus before composing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and show effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderTable(tableLayout{
				Headers: []string{"Setting", "Value"},
				Rows:    effectiveSettings(cfg),
			}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func effectiveSettings(cfg *config.Config) [][]string {
	ms := func(v int) string { return strconv.Itoa(v) + " ms" }
	manifest := cfg.Paths.Manifest
	if manifest == "" {
		manifest = "(none)"
	}
	workers := "auto"
	if cfg.Audio.DecodeWorkers > 0 {
		workers = strconv.Itoa(cfg.Audio.DecodeWorkers)
	}
	return [][]string{
		{"records", displayLocation(cfg.Paths.Records)},
		{"audio_pattern", cfg.Paths.AudioPattern},
		{"output", cfg.Paths.Output},
		{"manifest", manifest},
		{"filters", strings.Join(cfg.Query.Filters, ", ")},
		{"sort", strings.Join(cfg.Query.Sort, ", ")},
		{"key_field", cfg.Query.KeyField},
		{"max_duration", formatClock(cfg.Timing.MaxDurationSeconds * 1000)},
		{"clip", fmt.Sprintf("%s from %s", ms(cfg.Timing.ClipDurationMs), ms(cfg.Timing.ClipStartMs))},
		{"fades", fmt.Sprintf("in %s, out %s, %s", ms(cfg.Timing.FadeInMs), ms(cfg.Timing.FadeOutMs), cfg.Audio.FadeCurve)},
		{"overlap", ms(cfg.Timing.OverlapMs)},
		{"padding", fmt.Sprintf("start %s, end %s", ms(cfg.Timing.PadStartMs), ms(cfg.Timing.PadEndMs))},
		{"format", fmt.Sprintf("%d Hz, %d ch, %d-bit", cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.BitDepth)},
		{"decode_workers", workers},
	}
}
