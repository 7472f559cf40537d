package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fourup/pkg/pipeline"
)

// geomOpts holds the appearance flags shared by build, plan, batch, and serve.
type geomOpts struct {
	width       int    // total collage width in pixels
	padding     int    // spacing between and around images (-1 for none)
	border      int    // per-image border thickness (-1 for none)
	background  string // canvas background as #RRGGBB
	borderColor string // border color as #RRGGBB
	quality     int    // JPEG quality 1-100
	configFile  string // explicit config file path
}

// addGeomFlags registers the shared appearance flags on cmd.
func addGeomFlags(cmd *cobra.Command, g *geomOpts) {
	cmd.Flags().IntVar(&g.width, "width", 0, "total collage width in pixels (default 900)")
	cmd.Flags().IntVar(&g.padding, "padding", 0, "spacing between images in pixels, -1 for none (default 4)")
	cmd.Flags().IntVar(&g.border, "border", 0, "border thickness per image in pixels, -1 for none (default 2)")
	cmd.Flags().StringVar(&g.background, "background", "", "canvas background color as #RRGGBB (default #eeeeee)")
	cmd.Flags().StringVar(&g.borderColor, "border-color", "", "image border color as #RRGGBB (default #ffffff)")
	cmd.Flags().IntVar(&g.quality, "quality", 0, "JPEG quality 1-100 (default 80)")
	cmd.Flags().StringVar(&g.configFile, "config", "", "config file (default ~/.config/fourup/config.toml)")
}

// options builds pipeline options from the flags and the config file.
func (g *geomOpts) options() (pipeline.Options, Config, error) {
	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return pipeline.Options{}, Config{}, err
	}
	opts := pipeline.Options{
		TotalWidth:  g.width,
		Padding:     g.padding,
		BorderWidth: g.border,
		Background:  g.background,
		BorderColor: g.borderColor,
		Quality:     g.quality,
	}
	cfg.apply(&opts)
	return opts, cfg, nil
}

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	geomOpts
	output  string
	seed    uint64
	lenient bool
	noCache bool
}

// buildCommand creates the build command, the main entry point of the CLI.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{}

	cmd := &cobra.Command{
		Use:   "build [images...]",
		Short: "Compose up to four images into a collage",
		Long: `Build sorts the given images by aspect ratio, picks one of five
arrangements, and composes them into a single fixed-width JPEG.

Images can be local paths or http(s) URLs. Extras beyond the first four
that decode successfully are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args, &opts)
		},
	}

	addGeomFlags(cmd, &opts.geomOpts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "collage.jpg", "output file")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the arrangement coin flip (0 = random)")
	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "silently skip instead of failing when fewer than four images decode")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the source image cache")

	return cmd
}

// runBuild executes the full pipeline for a single collage.
func (c *CLI) runBuild(ctx context.Context, sources []string, opts *buildOpts) error {
	popts, cfg, err := opts.options()
	if err != nil {
		return err
	}
	popts.Sources = sources
	popts.Output = opts.output
	popts.Seed = opts.seed
	popts.Lenient = opts.lenient
	popts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Composing collage...")
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if res.Skipped {
		printWarning("Skipped: only %d of 4 images decoded", res.Stats.SourceCount)
		return nil
	}

	printSuccess("Built collage")
	printFile(opts.output)
	printStats(len(res.Sorted), res.Arrangement.Kind.String(), res.CacheInfo.SourceHits > 0)
	printDetail("%dx%d px · %s", res.Width, res.Height, formatBytes(len(res.Data)))
	for _, ref := range res.Dropped {
		printWarning("Dropped %s", ref)
	}
	return nil
}

// formatBytes renders a byte count in a human-friendly unit.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
