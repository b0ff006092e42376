package cli

import (
	"strings"

	"position-report-extractor/internal/extract"

	"github.com/spf13/cobra"
)

func brokersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "brokers",
		Short: "List the effective broker configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sources, err := opts.sources(cfg)
			if err != nil {
				return err
			}
			for _, src := range sources {
				printSource(cmd, src)
			}
			return nil
		},
	}
}

func printSource(cmd *cobra.Command, src *extract.Source) {
	cmd.Printf("%s\n", src.Name)
	cmd.Printf("  folder:     %s\n", src.Folder)
	for i, a := range src.Locator.Anchors {
		var parts []string
		if a.Strict != nil {
			parts = append(parts, "strict "+a.Strict.String())
		}
		if a.Loose != nil {
			parts = append(parts, "loose "+a.Loose.String())
		}
		cmd.Printf("  anchor %d:   %s\n", i+1, strings.Join(parts, ", "))
	}
	if src.Locator.MaxWindow > 0 {
		cmd.Printf("  window:     %d\n", src.Locator.MaxWindow)
	}
	if src.Reference != nil {
		cmd.Printf("  reference:  %s\n", src.Reference.String())
	}

	names := make([]string, len(src.Strategies))
	for i, st := range src.Strategies {
		names[i] = st.Name()
	}
	cmd.Printf("  strategies: %s\n", strings.Join(names, ", "))
	cmd.Printf("  columns:    %s\n", strings.Join(src.Columns(), ", "))
}
