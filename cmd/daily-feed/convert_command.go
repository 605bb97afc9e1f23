package main

import (
	"fmt"
	"strings"

	"daily-feed/core/interchange"
	"daily-feed/core/render"

	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var input string
	var output string
	var format string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Render an exported document tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := interchange.LoadFile(input)
			if err != nil {
				return err
			}

			target := output
			if target == "" {
				target = strings.TrimSuffix(input, ".json")
			}

			written, err := renderToFile(cmd.Context(), doc, format, target)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Document tree JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the input name)")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatEPUB, "Output format: "+strings.Join(render.Formats(), ", "))
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
