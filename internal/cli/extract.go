package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"position-report-extractor/internal/config"
	"position-report-extractor/internal/extract"
	"position-report-extractor/internal/mailstore"
	"position-report-extractor/internal/models"
	"position-report-extractor/internal/processor"
	"position-report-extractor/internal/sink"

	"github.com/spf13/cobra"
)

func extractCmd(opts *options) *cobra.Command {
	var (
		fromIMAP bool
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract position lists into one spreadsheet per broker",
		Long: `Reads every email of the configured broker folders, either from the
.eml archive written by fetch or straight from IMAP with --imap, and writes
the position rows found to one .xlsx workbook per broker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sources, err := opts.sources(cfg)
			if err != nil {
				return err
			}
			loc, err := config.Location(cfg)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var store mailstore.Store = mailstore.NewDirStore(cfg.Archive.Root)
			if fromIMAP {
				st, err := connect(ctx, cfg.Email)
				if err != nil {
					return err
				}
				defer func() {
					_ = st.Close()
				}()
				store = st
			}

			return runExtract(ctx, cmd, store, sources, cfg.Run, sink.NewXLSXWriter(cfg.Output.Dir, cfg.Output.FileName, loc))
		},
	}
	cmd.Flags().BoolVar(&fromIMAP, "imap", false, "read emails from IMAP instead of the archive")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory, overrides output.dir")
	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, store mailstore.Store, sources []*extract.Source, run models.RunConfig, w *sink.XLSXWriter) error {
	p := processor.NewProcessor(store, sources, processor.Options{
		Workers:        run.Workers,
		DocumentBudget: run.DocumentBudget,
		MaxAge:         run.MaxAge,
	})

	results, summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	for _, res := range results {
		if len(res.Records) == 0 {
			cmd.Printf("%-10s no records\n", res.Source.Name)
			continue
		}
		path, err := w.Write(res.Source.Name, res.Source.Columns(), res.Records)
		if err != nil {
			return err
		}
		cmd.Printf("%-10s %5d records -> %s\n", res.Source.Name, len(res.Records), path)
	}

	cmd.Println()
	cmd.Printf("%-10s %8s %8s %8s %8s %8s\n", "BROKER", "SCANNED", "MATCHED", "RECORDS", "FAILED", "SKIPPED")
	for _, s := range summary.Sources {
		line := fmt.Sprintf("%-10s %8d %8d %8d %8d %8d", s.Name, s.Scanned, s.Matched, s.Records, s.Failed, s.Skipped)
		if s.LowMatch() {
			line += "  low match rate"
		}
		cmd.Println(line)
	}
	cmd.Printf("%-10s %8d %8d %8d %8d %8d\n", "TOTAL", summary.Scanned, summary.Matched, summary.Records, summary.Failed, summary.Skipped)
	return nil
}
