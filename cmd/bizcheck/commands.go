package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bizcheck/internal/config"
	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/reference"
	"github.com/JonMunkholm/bizcheck/internal/storage/pg"
)

// fromDB is the record argument that reads the configured record table.
const fromDB = "db:"

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bizcheck",
		Short: "Business directory data-quality checks",
		Long: `Validates business-directory records (name, address, city, state, zip,
phone, time in business, category code, headcount, revenue) against GeoNames
postal data and the NAICS code table, and reports per-field quality counts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(createReportCmd(cfg))
	rootCmd.AddCommand(createBadCmd(cfg))
	rootCmd.AddCommand(createCheckCmd(cfg))
	rootCmd.AddCommand(createServeCmd(cfg))

	return rootCmd
}

func createReportCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report [records.json | - | db:]",
		Short: "Print the data-quality report for a batch of records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg, err := loadRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			records, err := loadRecords(ctx, cfg, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			run, err := core.NewProcessor(reg, cfg.Validation.Workers).Run(ctx, records)
			if err != nil {
				return err
			}
			slog.Info("run completed", "run_id", run.ID, "duration_ms", run.DurationMS)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			return run.Report.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func createBadCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "bad [field] [records.json | - | db:]",
		Short: "List the distinct invalid values of one field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			field, err := core.ParseField(args[0])
			if err != nil {
				return err
			}
			reg, err := loadRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			records, err := loadRecords(ctx, cfg, args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}

			offenders, err := core.NewProcessor(reg, cfg.Validation.Workers).Offenders(ctx, records, field)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if offenders == nil {
					offenders = []core.Value{}
				}
				return json.NewEncoder(out).Encode(offenders)
			}
			for _, v := range offenders {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the values as a JSON array")
	return cmd
}

func createCheckCmd(cfg *config.Config) *cobra.Command {
	var asInteger bool

	cmd := &cobra.Command{
		Use:   "check [field] [value]",
		Short: "Check a single value against one field's rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := core.ParseField(args[0])
			if err != nil {
				return err
			}

			v := core.Text(args[1])
			if asInteger {
				var n int64
				if _, err := fmt.Sscan(args[1], &n); err != nil {
					return fmt.Errorf("%w: %q is not an integer", core.ErrInvalidInput, args[1])
				}
				v = core.Integer(n)
			}

			reg, err := loadRegistry(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if reg.ValidateValue(field, v) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %q: valid\n", field, v)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %q: invalid\n", field, v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asInteger, "integer", false, "treat the value as a number rather than text")
	return cmd
}

// loadRegistry loads the reference dataset from the configured source and
// builds the validator registry.
func loadRegistry(ctx context.Context, cfg *config.Config) (*core.Registry, error) {
	var (
		ds  *reference.Dataset
		err error
	)

	switch cfg.Reference.Source {
	case config.SourcePostgres:
		src, cerr := pg.Connect(ctx, cfg.Database)
		if cerr != nil {
			return nil, cerr
		}
		defer src.Close()
		ds, err = src.Dataset(ctx)
	default:
		ds, err = reference.Load(ctx, reference.NewSourceOpener(cfg.Reference.AWSRegion), reference.Sources{
			GeoFiles:  cfg.Reference.GeoFiles,
			NAICSFile: cfg.Reference.NAICSFile,
		})
	}
	if err != nil {
		return nil, err
	}

	var opts []core.RegistryOption
	if cfg.Validation.ZipFormatOnly() {
		opts = append(opts, core.WithZipFormatOnly())
	}
	return core.NewRegistry(ds, opts...)
}

// loadRecords reads a batch from a JSON file or s3:// object, stdin ("-"),
// or the configured record table ("db:").
func loadRecords(ctx context.Context, cfg *config.Config, location string, stdin io.Reader) ([]core.Record, error) {
	switch location {
	case "-":
		return core.DecodeRecords(stdin)
	case fromDB:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("%w: DATABASE_URL is not set", core.ErrInvalidInput)
		}
		src, err := pg.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Records(ctx)
	}

	rc, err := reference.NewSourceOpener(cfg.Reference.AWSRegion).Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := core.DecodeRecords(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	slog.Debug("records loaded", "location", location, "records", len(records))
	return records, nil
}
