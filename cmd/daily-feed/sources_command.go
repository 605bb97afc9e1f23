package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"daily-feed/pkg/config"
	"daily-feed/pkg/opml"

	"github.com/spf13/cobra"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var exportOPML string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List configured sources or export them as OPML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			configured, err := cfg.ResolveSources()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exportOPML != "" {
				entries := feedEntries(configured)
				data, err := opml.Export(cfg.Output.Title, entries, time.Now())
				if err != nil {
					return err
				}
				if exportOPML == "-" {
					_, err = out.Write(data)
					return err
				}
				if err := os.WriteFile(exportOPML, data, 0o644); err != nil {
					return fmt.Errorf("write opml: %w", err)
				}
				fmt.Fprintf(out, "Exported %d feeds to %s\n", len(entries), exportOPML)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tURL\tCOMMENTS")
			for _, src := range configured {
				comments := "-"
				if src.Type != "rss" {
					comments = fmt.Sprintf("%t", src.CommentsEnabled())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", src.Name, src.Type, src.URL, comments)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&exportOPML, "opml", "", "Export rss sources as OPML to a file (- for stdout)")
	return cmd
}

// feedEntries keeps sources that have a feed URL
func feedEntries(configured []config.SourceConfig) []opml.FeedEntry {
	var entries []opml.FeedEntry
	for _, src := range configured {
		if src.URL == "" {
			continue
		}
		entries = append(entries, opml.FeedEntry{
			Title:       src.Name,
			URL:         src.URL,
			Description: src.Description,
		})
	}
	return entries
}
