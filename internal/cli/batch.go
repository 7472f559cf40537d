package cli

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourup/pkg/codec"
	"github.com/matzehuels/fourup/pkg/pipeline"
)

// imageExtensions are the filename extensions batch considers image sources,
// derived from the decoder registry.
var imageExtensions = func() map[string]bool {
	m := make(map[string]bool)
	for _, ext := range codec.Extensions() {
		m[ext] = true
	}
	return m
}()

// batchOpts holds the command-line flags for the batch command.
type batchOpts struct {
	geomOpts
	outputDir string
	workers   int
	seed      uint64
	noCache   bool
	plain     bool
}

// batchJob is one collage to build: a named set of source images.
type batchJob struct {
	name    string
	sources []string
}

// batchCommand creates the batch command. Every immediate subdirectory of
// the given directory that contains images becomes one collage.
func (c *CLI) batchCommand() *cobra.Command {
	opts := batchOpts{}

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Build one collage per subdirectory of a directory",
		Long: `Batch scans the immediate subdirectories of dir. Each subdirectory
containing images becomes one collage named <subdir>.jpg in the output
directory. Subdirectories with fewer than four decodable images are
skipped with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd.Context(), args[0], &opts)
		},
	}

	addGeomFlags(cmd, &opts.geomOpts)
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", ".", "directory for the built collages")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of parallel builds")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the arrangement coin flips (0 = random)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the source image cache")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "log progress instead of showing the live view")

	return cmd
}

// discoverJobs lists the subdirectories of root that contain images.
func discoverJobs(root string) ([]batchJob, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var jobs []batchJob
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		var sources []string
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if imageExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				sources = append(sources, filepath.Join(dir, f.Name()))
			}
		}
		if len(sources) == 0 {
			continue
		}
		sort.Strings(sources)
		jobs = append(jobs, batchJob{name: entry.Name(), sources: sources})
	}
	return jobs, nil
}

// runBatch builds all discovered jobs on a worker pool, reporting progress
// through the live view or plain logs.
func (c *CLI) runBatch(ctx context.Context, root string, opts *batchOpts) error {
	base, cfg, err := opts.options()
	if err != nil {
		return err
	}

	jobs, err := discoverJobs(root)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		printInfo("No image sets found under %s", root)
		return nil
	}

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	runner, err := c.newRunner(opts.noCache, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	workers := min(max(opts.workers, 1), len(jobs))

	// Seeded batches stay reproducible per job name, whatever the
	// worker scheduling does.
	jobOptions := func(job batchJob) pipeline.Options {
		jopts := base
		jopts.Sources = job.sources
		jopts.Output = filepath.Join(opts.outputDir, job.name+".jpg")
		jopts.Lenient = true
		if opts.seed != 0 {
			h := fnv.New64a()
			h.Write([]byte(job.name))
			jopts.Seed = opts.seed ^ h.Sum64()
		}
		return jopts
	}

	if opts.plain {
		return c.runBatchPlain(ctx, runner, jobs, workers, jobOptions)
	}
	return c.runBatchTUI(ctx, runner, jobs, workers, jobOptions)
}

// runBatchPlain runs the pool with log output only.
func (c *CLI) runBatchPlain(ctx context.Context, runner *pipeline.Runner, jobs []batchJob, workers int, jobOptions func(batchJob) pipeline.Options) error {
	logger := loggerFromContext(ctx)

	queue := make(chan batchJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				jopts := jobOptions(job)
				res, err := runner.Execute(ctx, jopts)
				mu.Lock()
				switch {
				case err != nil:
					logger.Error("build failed", "set", job.name, "error", err)
					failed++
				case res.Skipped:
					logger.Warn("skipped", "set", job.name, "decoded", res.Stats.SourceCount)
				default:
					logger.Info("built", "set", job.name, "arrangement", res.Arrangement.Kind)
				}
				mu.Unlock()
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(jobs))
	}
	printSuccess("Built %d collages", len(jobs))
	return nil
}

// runBatchTUI runs the pool behind the live bubbletea view.
func (c *CLI) runBatchTUI(ctx context.Context, runner *pipeline.Runner, jobs []batchJob, workers int, jobOptions func(batchJob) pipeline.Options) error {
	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = job.name
	}

	p := tea.NewProgram(NewBatchModel(names), tea.WithContext(ctx))

	// Pipeline logs would write over the live view.
	quiet := log.New(io.Discard)

	go func() {
		queue := make(chan batchJob)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range queue {
					p.Send(jobStartMsg{Name: job.name})
					jopts := jobOptions(job)
					jopts.Logger = quiet
					res, err := runner.Execute(ctx, jopts)
					msg := jobDoneMsg{Name: job.name, Err: err}
					if err == nil {
						msg.Skipped = res.Skipped
						if !res.Skipped {
							msg.Arrangement = res.Arrangement.Kind.String()
						}
					}
					p.Send(msg)
				}
			}()
		}
		for _, job := range jobs {
			queue <- job
		}
		close(queue)
		wg.Wait()
		p.Send(batchDoneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	model := final.(BatchModel)
	if failed := model.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(jobs))
	}
	printSuccess("Built %d collages", len(jobs))
	return nil
}
