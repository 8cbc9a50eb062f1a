package cli

import (
	"os"

	"github.com/spf13/cobra"

	"pixbatch/internal/application"
	"pixbatch/internal/batch"
)

// singleCommand builds a subcommand that runs one single-file operation
func singleCommand(opts *rootOptions, use, short string, args cobra.PositionalArgs, setup func(cmd *cobra.Command), run func(app *application.App, args []string) batch.SingleResult) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(true, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			app := e.app(cmd.Context())
			return printSingleResult(cmd.OutOrStdout(), run(app, absPaths(args)))
		},
	}
	if setup != nil {
		setup(cmd)
	}
	return cmd
}

func newPDFCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Single-file PDF operations",
	}

	var (
		outputDir     string
		outputPath    string
		quality       int
		password      string
		ownerPassword string
		ranges        string
	)
	outputDirFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output folder (default: workspace pdf folder)")
	}
	outputPathFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: workspace pdf folder)")
	}

	cmd.AddCommand(
		singleCommand(opts, "compress <file.pdf>", "Compress a PDF", cobra.ExactArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().IntVarP(&quality, "quality", "q", 50, "quality 1-100, lower is smaller")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.CompressPDF(args[0], quality, absPath(outputDir))
			}),
		singleCommand(opts, "protect <file.pdf>", "Encrypt a PDF with a password", cobra.ExactArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().StringVar(&password, "password", "", "password required to open the file")
				cmd.Flags().StringVar(&ownerPassword, "owner-password", "", "owner password (default: same as --password)")
				_ = cmd.MarkFlagRequired("password")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.ProtectPDF(args[0], password, ownerPassword, absPath(outputDir))
			}),
		singleCommand(opts, "unlock <file.pdf>", "Remove the password from a PDF", cobra.ExactArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().StringVar(&password, "password", "", "current password")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.UnlockPDF(args[0], password, absPath(outputDir))
			}),
		singleCommand(opts, "split <file.pdf>", "Split a PDF into page ranges", cobra.ExactArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().StringVarP(&ranges, "ranges", "r", "", `page ranges, e.g. "1-3, 5, 7-end"`)
				_ = cmd.MarkFlagRequired("ranges")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.SplitPDF(args[0], ranges, absPath(outputDir))
			}),
		singleCommand(opts, "merge <files.pdf...>", "Merge PDFs in the given order", cobra.MinimumNArgs(2),
			outputPathFlag,
			func(app *application.App, args []string) batch.SingleResult {
				return app.MergePDFs(args, absPath(outputPath))
			}),
		singleCommand(opts, "images <images...>", "Place images on the pages of one PDF", cobra.MinimumNArgs(1),
			outputPathFlag,
			func(app *application.App, args []string) batch.SingleResult {
				return app.ImagesToPDF(args, absPath(outputPath))
			}),
		singleCommand(opts, "extract <file.pdf>", "Extract embedded images from a PDF", cobra.ExactArgs(1),
			outputDirFlag,
			func(app *application.App, args []string) batch.SingleResult {
				return app.ExtractPDFImages(args[0], absPath(outputDir))
			}),
	)
	return cmd
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate favicons, animated GIFs and sprite sheets",
	}

	var (
		outputDir string
		delayMs   int
		loopCount int
		columns   int
		padding   int
	)
	outputDirFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output folder (default: workspace generated folder)")
	}

	cmd.AddCommand(
		singleCommand(opts, "favicons <image>", "Build a favicon bundle from one image", cobra.ExactArgs(1),
			outputDirFlag,
			func(app *application.App, args []string) batch.SingleResult {
				return app.GenerateFavicons(args[0], absPath(outputDir))
			}),
		singleCommand(opts, "gif <frames...>", "Build an animated GIF", cobra.MinimumNArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().IntVar(&delayMs, "delay", 100, "frame delay in milliseconds")
				cmd.Flags().IntVar(&loopCount, "loop", 0, "loop count, 0 loops forever")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.CreateGIF(args, delayMs, loopCount, absPath(outputDir))
			}),
		singleCommand(opts, "sprites <images...>", "Pack images into a sprite sheet with a JSON atlas", cobra.MinimumNArgs(1),
			func(cmd *cobra.Command) {
				outputDirFlag(cmd)
				cmd.Flags().IntVar(&columns, "columns", 0, "grid columns (default: square grid)")
				cmd.Flags().IntVar(&padding, "padding", 0, "padding between cells in pixels")
			},
			func(app *application.App, args []string) batch.SingleResult {
				return app.GenerateSpritesheet(args, columns, padding, absPath(outputDir))
			}),
	)
	return cmd
}
