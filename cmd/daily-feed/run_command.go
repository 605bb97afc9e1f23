package main

import (
	"fmt"
	"strings"

	"daily-feed/core/interchange"
	"daily-feed/core/render"
	"daily-feed/pkg/featureflags"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var exportAST string
	var output string
	var format string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every source and write the digest",
		Long: `Fetch every configured source, build the document and either render it
(epub or markdown) or export the tree as interchange JSON with --export-ast.
Sources that fail are skipped and listed in the summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cfg)

			runCtx := featureflags.WithManager(cmd.Context(), featureflags.NewEnvManager(""))

			p, err := buildPipeline(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			if len(p.sources) == 0 {
				return fmt.Errorf("no sources configured")
			}

			doc, report, err := p.service.BuildDocument(runCtx, p.meta, p.sources)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path := strings.TrimSpace(exportAST); path != "" {
				if err := interchange.SaveFile(path, doc); err != nil {
					return fmt.Errorf("export tree: %w", err)
				}
				fmt.Fprintf(out, "Exported document tree to %s\n", path)
			} else {
				if format == "" {
					format = cfg.Output.Format
				}
				target := output
				if target == "" {
					target = cfg.Output.Filename
				}
				written, err := renderToFile(runCtx, doc, format, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", written)
			}

			printSummary(out, doc, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportAST, "export-ast", "", "Write the document tree as JSON instead of rendering")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (extension added when missing)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(render.Formats(), ", "))
	return cmd
}
