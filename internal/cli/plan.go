package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourup/pkg/codec"
	"github.com/matzehuels/fourup/pkg/collage"
	"github.com/matzehuels/fourup/pkg/collage/layout"
	"github.com/matzehuels/fourup/pkg/errors"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	geomOpts
	seed    uint64
	noCache bool
	asJSON  bool
}

// planCommand creates the plan command, a dry run that prints the layout a
// set of images would get without composing anything.
func (c *CLI) planCommand() *cobra.Command {
	opts := planOpts{}

	cmd := &cobra.Command{
		Use:   "plan [images...]",
		Short: "Show the layout a set of images would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args, &opts)
		},
	}

	addGeomFlags(cmd, &opts.geomOpts)
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the arrangement coin flip (0 = random)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the source image cache")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the plan as JSON")

	return cmd
}

// planRect is the JSON shape of one placed image.
type planRect struct {
	Image string `json:"image"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

// planOutput is the JSON shape of the whole plan.
type planOutput struct {
	Arrangement string     `json:"arrangement"`
	DropWidest  bool       `json:"drop_widest"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Rects       []planRect `json:"rects"`
}

// runPlan loads and decodes the sources, then solves and prints the layout.
func (c *CLI) runPlan(ctx context.Context, refs []string, opts *planOpts) error {
	popts, cfg, err := opts.options()
	if err != nil {
		return err
	}
	params, err := popts.Params()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	sources := make([]*collage.Source, 0, len(refs))
	for _, ref := range refs {
		var data []byte
		if errors.IsRemoteRef(ref) {
			data, err = runner.Fetcher.Fetch(ctx, ref)
		} else {
			data, err = os.ReadFile(ref)
		}
		if err != nil {
			return err
		}
		img, _, err := codec.Decode(data, ref)
		if err != nil {
			return err
		}
		src, err := collage.NewSource(ref, img)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	if len(sources) < collage.MinSources {
		return errors.New(errors.ErrCodeInsufficientImages,
			"need %d images, have %d", collage.MinSources, len(sources))
	}

	sorted := sources[:collage.MinSources]
	collage.SortByRatio(sorted)

	var ratios [4]float64
	for i, s := range sorted {
		ratios[i] = s.Ratio()
	}
	popts.Seed = opts.seed
	decision := layout.Classify(ratios, popts.Coin()())
	if decision.DropWidest {
		sorted = sorted[:collage.MinSources-1]
	}

	rs := make([]float64, len(sorted))
	for i, s := range sorted {
		rs[i] = s.Ratio()
	}
	metrics := params.Metrics()
	plan := layout.Solve(decision, rs, metrics)

	if opts.asJSON {
		out := planOutput{
			Arrangement: decision.Kind.String(),
			DropWidest:  decision.DropWidest,
			Width:       metrics.TotalWidth,
			Height:      metrics.CanvasHeight(plan),
		}
		for i, r := range plan {
			out.Rects = append(out.Rects, planRect{
				Image: sorted[i].Name(),
				X:     r.X, Y: r.Y, W: r.W, H: r.H,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(StyleTitle.Render("Arrangement: " + decision.Kind.String()))
	if decision.DropWidest {
		printWarning("Widest image dropped (three tall images in a row)")
	}
	printDetail("canvas %dx%d px", metrics.TotalWidth, metrics.CanvasHeight(plan))

	rows := make([][]string, len(plan))
	for i, r := range plan {
		rows[i] = []string{
			sorted[i].Name(),
			fmt.Sprintf("%.3f", sorted[i].Ratio()),
			fmt.Sprintf("%d", r.X),
			fmt.Sprintf("%d", r.Y),
			fmt.Sprintf("%d", r.W),
			fmt.Sprintf("%d", r.H),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Image", "Ratio", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 0 {
				return StyleValue
			}
			return StyleNumber
		})
	fmt.Println(t.Render())
	return nil
}
