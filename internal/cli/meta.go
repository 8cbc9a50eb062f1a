package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMetaCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "meta <image>",
		Short: "Show image dimensions, format and EXIF tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(true, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			meta, err := e.app(cmd.Context()).ReadMetadata(absPath(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}

			fmt.Fprintln(out, fileStyle.Render(meta.Path))
			rows := []summaryRow{
				{Label: "Format", Value: meta.Format},
				{Label: "Dimensions", Value: fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
				{Label: "File size", Value: formatBytes(meta.FileSize)},
				{Label: "GPS data", Value: fmt.Sprintf("%t", meta.HasGPS)},
			}
			for _, entry := range meta.Exif {
				rows = append(rows, summaryRow{Label: entry.Tag, Value: entry.Value})
			}
			fmt.Fprintln(out, renderSummary(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newOpsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List batch operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(true, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			for _, info := range e.app(cmd.Context()).ListOperations() {
				fmt.Fprintf(out, "%s %s\n", fileStyle.Render(padRight(info.Name, 16)), dimStyle.Render(info.Description))
			}
			return nil
		},
	}
}
