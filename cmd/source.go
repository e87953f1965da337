package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geo-profiler/internal/config"
	"github.com/sells-group/geo-profiler/internal/fetcher"
	"github.com/sells-group/geo-profiler/internal/geo"
	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/semantic"
	"github.com/sells-group/geo-profiler/internal/table"
)

// datasetJob is one dataset to profile: its annotation file plus its data source.
type datasetJob struct {
	Name         string `yaml:"name"`
	SemanticPath string `yaml:"semantic"`
	table.Source `yaml:",inline"`
	Metadata     map[string]any `yaml:"metadata,omitempty"`
}

// profileResult is the serialized outcome of profiling one dataset.
type profileResult struct {
	Dataset     string                        `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	GeoProfile  *model.GeoProfile             `json:"geo_profile,omitempty" yaml:"geo_profile,omitempty"`
	Semantics   *model.DatasetSemanticProfile `json:"dataset_semantics,omitempty" yaml:"dataset_semantics,omitempty"`
	Metadata    map[string]any                `json:"raw_metadata,omitempty" yaml:"raw_metadata,omitempty"`
	Explanation *geo.Explanation              `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Error       string                        `json:"error,omitempty" yaml:"error,omitempty"`
}

// outputOptions selects what a profileResult carries.
type outputOptions struct {
	Format           string
	IncludeSemantics bool
	Explain          bool
}

// frameLoader opens a dataset source.
type frameLoader interface {
	Load(ctx context.Context, src table.Source) (*table.Frame, error)
}

// newProfiler builds a Profiler with the configured sampling.
func newProfiler(c *config.Config) *geo.Profiler {
	opts := []semantic.Option{semantic.WithSampleSize(c.Sample.Size)}
	if c.Sample.NAValues != nil {
		opts = append(opts, semantic.WithNAValues(c.Sample.NAValues))
	}
	return geo.NewProfiler(semantic.NewParser(opts...))
}

// profileJob loads the job's annotations and data and runs the profiler.
func profileJob(ctx context.Context, p *geo.Profiler, loader frameLoader, job datasetJob, out outputOptions) (*profileResult, error) {
	text, err := os.ReadFile(job.SemanticPath)
	if err != nil {
		return nil, eris.Wrapf(err, "read semantic profile %s", job.SemanticPath)
	}

	frame, err := loader.Load(ctx, job.Source)
	if err != nil {
		return nil, eris.Wrapf(err, "load dataset %s", job.Path)
	}

	enriched, err := p.ProfileDataset(string(text), frame, job.Metadata)
	if err != nil {
		return nil, err
	}

	res := &profileResult{
		Dataset:    job.Name,
		GeoProfile: enriched.GeoProfile,
		Metadata:   enriched.RawMetadata,
	}
	if out.IncludeSemantics {
		res.Semantics = enriched.DatasetSemantics
	}
	if out.Explain {
		ex := geo.Explain(enriched.DatasetSemantics)
		res.Explanation = &ex
	}
	return res, nil
}

// sourceLoader opens datasets with the configured limits. A Postgres pool is
// created on first use of a postgres source and shared afterwards.
type sourceLoader struct {
	opts table.Options
	dsn  string

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func newSourceLoader(c *config.Config) *sourceLoader {
	downloader := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RateLimit:  rate.Limit(c.Fetch.RateLimit),
	})
	return &sourceLoader{
		opts: table.Options{
			MaxRows:    c.Table.MaxRows,
			TempDir:    c.Table.TempDir,
			Downloader: downloader,
		},
		dsn: c.Store.DatabaseURL,
	}
}

// Load implements frameLoader.
func (l *sourceLoader) Load(ctx context.Context, src table.Source) (*table.Frame, error) {
	opts := l.opts
	kind := src.Kind
	if kind == "" {
		kind = table.DetectKind(src.Path)
	}
	if kind == table.KindPostgres {
		pool, err := l.postgres(ctx)
		if err != nil {
			return nil, err
		}
		opts.Pool = pool
	}

	zap.L().Debug("loading dataset",
		zap.String("data", src.Path),
		zap.String("kind", kind),
	)
	return table.Open(ctx, src, opts)
}

func (l *sourceLoader) postgres(ctx context.Context) (table.Pool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		return l.pool, nil
	}
	if l.dsn == "" {
		return nil, eris.New("postgres source: no database_url configured (set store.database_url)")
	}

	pool, err := pgxpool.New(ctx, l.dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres source: create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres source: ping database")
	}

	l.pool = pool
	return pool, nil
}

// Close releases the Postgres pool if one was opened.
func (l *sourceLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool != nil {
		l.pool.Close()
		l.pool = nil
	}
}
