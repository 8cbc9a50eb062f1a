package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pixbatch/internal/application"
	"pixbatch/internal/operations"
	"pixbatch/internal/progress"
	"pixbatch/internal/services"
)

// eventBuffer is how far the view may lag behind before events are dropped
const eventBuffer = 64

type paramFlags struct {
	params operations.Params
	cropX  int
	cropY  int
}

func (p *paramFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&p.params.Quality, "quality", "q", 0, "quality 1-100 (default from preferences)")
	fs.StringVarP(&p.params.Format, "format", "f", "", "target format for convert_images (jpeg, png, webp, gif, bmp, tiff, ico)")
	fs.StringVar(&p.params.Mode, "mode", "", "resize mode: exact, width, height, percentage")
	fs.IntVar(&p.params.Width, "width", 0, "target width in pixels")
	fs.IntVar(&p.params.Height, "height", 0, "target height in pixels")
	fs.IntVar(&p.params.Percentage, "percentage", 0, "resize percentage")
	fs.StringVar(&p.params.Ratio, "ratio", "", "crop ratio w:h or free")
	fs.StringVar(&p.params.Anchor, "anchor", "", "crop anchor")
	fs.IntVar(&p.cropX, "crop-x", 0, "crop origin x")
	fs.IntVar(&p.cropY, "crop-y", 0, "crop origin y")
	fs.StringVar(&p.params.Text, "text", "", "watermark text")
	fs.StringVar(&p.params.Position, "position", "", "watermark position (center, top-left, top-right, bottom-left, bottom-right, tiled)")
	fs.IntVar(&p.params.Opacity, "opacity", 0, "watermark opacity 0-100")
	fs.Float64Var(&p.params.FontSize, "font-size", 0, "watermark font size")
	fs.StringVar(&p.params.Pattern, "pattern", "", "rename pattern using {name} {index} {date} {ext}, e.g. photo-{index}")
	fs.IntVar(&p.params.StartIndex, "start", 0, "first rename index")
	fs.BoolVar(&p.params.PreserveICC, "preserve-icc", false, "keep ICC color profiles when stripping metadata")
	fs.StringVar(&p.params.Level, "level", "", "PDF compression level: ultra, aggressive, good_enough")
}

// resolve returns the params, with crop offsets only when given
func (p *paramFlags) resolve(fs *pflag.FlagSet) operations.Params {
	params := p.params
	if fs.Changed("crop-x") {
		x := p.cropX
		params.CropX = &x
	}
	if fs.Changed("crop-y") {
		y := p.cropY
		params.CropY = &y
	}
	return params
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var outputDir string
	pf := &paramFlags{}

	cmd := &cobra.Command{
		Use:   "run <operation> <files...>",
		Short: "Run a batch operation over files",
		Long:  "Run a batch operation over files. Use `pixbatch ops` to list operations.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(true, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			req := services.BatchRequest{
				Operation:  args[0],
				InputPaths: absPaths(args[1:]),
				OutputDir:  absPath(outputDir),
				Params:     pf.resolve(cmd.Flags()),
			}
			response, err := runBatch(cmd.Context(), e, req, opts.plain, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			printBatchSummary(cmd.OutOrStdout(), response.Summary, response.OutputDir)
			if response.Summary.Completed == 0 {
				return fmt.Errorf("no files processed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output folder (default: workspace subfolder)")
	pf.register(cmd.Flags())
	return cmd
}

// runBatch runs req while rendering progress. Interrupting ctx cancels the
// batch through its token so the cancelled summary is still returned.
func runBatch(ctx context.Context, e *env, req services.BatchRequest, plain bool, out io.Writer) (*application.BatchResponse, error) {
	app := e.app(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, func() { app.CancelProcessing() })
	defer stop()

	events := make(chan progress.Event, eventBuffer)
	unsubscribe := e.broadcaster.Subscribe(progress.SinkFunc(func(ev progress.Event) {
		select {
		case events <- ev:
		default:
		}
	}))

	uiDone := make(chan struct{})
	if plain {
		go func() {
			defer close(uiDone)
			for ev := range events {
				if ev.CurrentFile != "" {
					fmt.Fprintf(out, "[%d/%d] %s\n", ev.Completed, ev.Total, ev.CurrentFile)
				}
			}
		}()
	} else {
		model := newProgressModel(req.Operation, events, func() { app.CancelProcessing() })
		program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
		go func() {
			defer close(uiDone)
			_, _ = program.Run()
		}()
	}

	response, err := app.RunBatch(req)
	unsubscribe()
	close(events)
	<-uiDone
	return response, err
}
