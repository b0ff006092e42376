package cli

import (
	"os"
	"os/signal"

	"position-report-extractor/internal/index"
	"position-report-extractor/internal/processor"

	"github.com/spf13/cobra"
)

func fetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Mirror broker folders from IMAP into the .eml archive",
		Long: `Downloads the messages of every broker folder under the configured
mailbox into <archive.root>/<folder>/Emails. Messages recorded in the
download index are not fetched again.`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			idx, err := index.Open(cfg.Archive.Index)
			if err != nil {
				return err
			}
			defer func() {
				_ = idx.Close()
			}()

			store, err := connect(ctx, cfg.Email)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			counts, err := processor.NewFetcher(store, idx, cfg.Archive.Root).Run(ctx, sources)
			if err != nil {
				return err
			}

			cmd.Printf("%-12s %6s %6s %8s %6s %8s\n", "FOLDER", "SEEN", "NEW", "SKIPPED", "FAILED", "INDEXED")
			for _, c := range counts {
				cmd.Printf("%-12s %6d %6d %8d %6d %8d\n", c.Folder, c.Seen, c.New, c.Skipped, c.Failed, c.Indexed)
			}
			t := processor.Totals(counts)
			cmd.Printf("%-12s %6d %6d %8d %6d %8d\n", "TOTAL", t.Seen, t.New, t.Skipped, t.Failed, t.Indexed)
			return nil
		},
	}
}
