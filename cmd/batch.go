package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-profiler/internal/table"
)

var batchFlags struct {
	manifest         string
	concurrency      int
	output           string
	format           string
	includeSemantics bool
	explain          bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Profile every dataset listed in a YAML manifest",
	Long: `Profiles datasets concurrently. A failed dataset is logged and reported in
the output without stopping the others; the command exits non-zero if any failed.

Manifest format:

  datasets:
    - name: 311-requests
      semantic: semantics/311.txt
      data: data/311.csv
    - name: parks
      semantic: semantics/parks.txt
      data: data/parks.xlsx
      sheet: Properties`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		concurrency := batchFlags.concurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentDatasets
		} else {
			cfg.Batch.MaxConcurrentDatasets = concurrency
		}
		if err := cfg.Validate("batch"); err != nil {
			return err
		}
		out := outputOptions{
			Format:           batchFlags.format,
			IncludeSemantics: batchFlags.includeSemantics,
			Explain:          batchFlags.explain,
		}
		if err := validateFormat(out.Format); err != nil {
			return err
		}

		jobs, err := loadManifest(batchFlags.manifest)
		if err != nil {
			return err
		}

		loader := newSourceLoader(cfg)
		defer loader.Close()
		profiler := newProfiler(cfg)

		results, failed := processBatch(ctx, jobs, concurrency, func(ctx context.Context, job datasetJob) (*profileResult, error) {
			return profileJob(ctx, profiler, loader, job, out)
		})

		var w io.Writer = cmd.OutOrStdout()
		if batchFlags.output != "" {
			f, err := os.Create(batchFlags.output)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		if err := writeResults(w, results, out.Format); err != nil {
			return err
		}

		if failed > 0 {
			return eris.Errorf("batch: %d of %d datasets failed", failed, len(jobs))
		}
		return nil
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.manifest, "manifest", "", "path to the YAML dataset manifest")
	f.IntVar(&batchFlags.concurrency, "concurrency", 0, "datasets profiled at once (default from config)")
	f.StringVar(&batchFlags.output, "output", "", "write results to this file instead of stdout")
	f.StringVar(&batchFlags.format, "format", formatJSON, "output format: text, json, or yaml")
	f.BoolVar(&batchFlags.includeSemantics, "include-semantics", false, "include parsed column semantics in the output")
	f.BoolVar(&batchFlags.explain, "explain", false, "report which rule decided each classification")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

// batchManifest lists the datasets of a batch run.
type batchManifest struct {
	Datasets []datasetJob `yaml:"datasets"`
}

// loadManifest reads a manifest. Relative semantic and data paths resolve
// against the manifest's directory; a dataset without a name is named after
// its data path.
func loadManifest(path string) ([]datasetJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open manifest")
	}
	defer f.Close() //nolint:errcheck

	var m batchManifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, eris.New("batch: manifest is empty")
		}
		return nil, eris.Wrap(err, "batch: parse manifest")
	}

	base := filepath.Dir(path)
	for i := range m.Datasets {
		job := &m.Datasets[i]
		if job.SemanticPath == "" || job.Path == "" {
			return nil, eris.Errorf("batch: dataset %d: semantic and data are required", i+1)
		}
		if job.Name == "" {
			job.Name = job.Path
		}
		job.SemanticPath = resolvePath(base, job.SemanticPath)
		if !isPostgresPath(job.Path) && !table.IsRemote(job.Path) {
			job.Path = resolvePath(base, job.Path)
		}
	}
	return m.Datasets, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func isPostgresPath(p string) bool {
	return strings.HasPrefix(p, "postgres:")
}

// profileFunc profiles one dataset of a batch.
type profileFunc func(ctx context.Context, job datasetJob) (*profileResult, error)

// processBatch profiles jobs concurrently and returns one result per job in
// manifest order, plus the number of failures. A failed job's result carries
// the error message.
func processBatch(ctx context.Context, jobs []datasetJob, concurrency int, profile profileFunc) ([]profileResult, int) {
	results := make([]profileResult, len(jobs))
	if len(jobs) == 0 {
		zap.L().Info("manifest lists no datasets")
		return results, 0
	}

	zap.L().Info("processing batch",
		zap.Int("datasets", len(jobs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, job := range jobs {
		g.Go(func() error {
			log := zap.L().With(zap.String("dataset", job.Name))

			res, err := profile(gctx, job)
			if err != nil {
				failed.Add(1)
				log.Error("profiling failed", zap.Error(err))
				results[i] = profileResult{Dataset: job.Name, Error: err.Error()}
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			res.Dataset = job.Name
			results[i] = *res
			log.Info("profiling complete",
				zap.String("spatial_role", string(res.GeoProfile.SpatialRole)),
				zap.String("spatial_resolution", string(res.GeoProfile.SpatialResolution)),
			)
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, int(failed.Load())
}
