package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"montage/internal/config"
	"montage/internal/logging"
	"montage/internal/recordstore"
	"montage/internal/services"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import <destination>",
		Short: "Copy records into a SQLite file or Postgres database",
		Long: `Load every record from the configured store (or --in) and replace the
contents of the destination with them. The destination is a .db/.sqlite path
or a postgres:// DSN. Point paths.records at it afterwards to compose from it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("in") {
				cfg.Paths.Records = source
				if err := finalizeOverrides(cfg); err != nil {
					return err
				}
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "import")

			dest := strings.TrimSpace(args[0])
			if !config.IsDSN(dest) {
				if dest, err = config.ExpandPath(dest); err != nil {
					return services.Wrap(services.ErrConfiguration, "import", "destination", "", err)
				}
			}
			if dest == cfg.Paths.Records {
				return services.Wrap(services.ErrValidation, "import", "destination", "destination is the source store", nil)
			}

			started := time.Now()
			records, err := recordstore.Load(cmd.Context(), cfg.Paths.Records)
			if err != nil {
				return err
			}
			importer, err := recordstore.OpenImporter(cmd.Context(), dest)
			if err != nil {
				return err
			}
			defer importer.Close()
			if err := importer.Import(cmd.Context(), records); err != nil {
				return err
			}

			shown := displayLocation(dest)
			logger.Info("records imported",
				logging.Int("records", len(records)),
				logging.String("source", displayLocation(cfg.Paths.Records)),
				logging.String("destination", shown),
				logging.Duration("elapsed", time.Since(started)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s records into %s\n", humanize.Comma(int64(len(records))), shown)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "in", "", "Source record store (default: paths.records)")
	return cmd
}

// displayLocation hides any password in a DSN.
func displayLocation(location string) string {
	if !config.IsDSN(location) {
		return location
	}
	u, err := url.Parse(location)
	if err != nil {
		return "database"
	}
	return u.Redacted()
}
