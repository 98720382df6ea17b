package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zonemap/pkg/cache"
	"github.com/matzehuels/zonemap/pkg/errors"
	zio "github.com/matzehuels/zonemap/pkg/io"
	"github.com/matzehuels/zonemap/pkg/observability"
	"github.com/matzehuels/zonemap/pkg/render/sink"
	"github.com/matzehuels/zonemap/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in io.Reader, source string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	ds, err := r.Load(ctx, in, source, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Rows = ds.Table.Len()
	result.Stats.Points = len(ds.Points)
	result.Stats.Skipped = len(ds.Skipped)
	result.Stats.Violations = len(ds.Violations)

	logger := r.logger(opts)
	logger.Info("loaded table",
		"source", source,
		"points", len(ds.Points),
		"skipped", len(ds.Skipped),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	s, sceneHash, sceneHit, err := r.BuildWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Scene = s
	result.SceneHash = sceneHash
	result.Stats.BuildTime = time.Since(buildStart)
	result.CacheInfo.SceneHit = sceneHit

	logger.Info("built scene",
		"primitives", len(s.Primitives),
		"cached", sceneHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, sceneHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExecuteFile runs the pipeline on a CSV file.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return r.Execute(ctx, f, path, opts)
}

// Load reads and normalizes a CSV table and converts its rows to points.
// Missing required columns fail the load; unparseable rows are skipped and
// reported on the dataset.
func (r *Runner) Load(ctx context.Context, in io.Reader, source string, opts Options) (ds *Dataset, err error) {
	opts.SetDefaults()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		var rows, skipped int
		if ds != nil {
			rows, skipped = len(ds.Points), len(ds.Skipped)
		}
		hooks.OnLoadComplete(ctx, source, rows, skipped, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := zio.ReadCSV(in, opts.ReadOptions()...)
	if err != nil {
		return nil, err
	}
	points, skipped, err := t.Points()
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		r.logger(opts).Warn("skipped row", "row", s.Row, "column", s.Column, "value", s.Value, "reason", s.Reason)
	}

	hash, err := cache.HashJSON(points)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash points")
	}

	return &Dataset{
		Source:     source,
		Table:      t,
		Points:     points,
		Skipped:    skipped,
		Violations: t.CheckRanges(opts.Axis),
		Hash:       hash,
	}, nil
}

// BuildWithCacheInfo lays out a dataset with caching. It returns the scene,
// the hash of its JSON form and whether it came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, ds *Dataset, opts Options) (s *scene.Scene, hash string, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	rs, err := opts.RuleSet()
	if err != nil {
		return nil, "", false, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(ds.Points))
	start := time.Now()
	defer func() { hooks.OnBuildComplete(ctx, len(ds.Points), time.Since(start), err) }()

	cacheKey := r.Keyer.SceneKey(ds.Hash, opts.SceneKeyOpts(rs))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.get(ctx, "scene", cacheKey); ok {
			if cached, err := sink.ReadJSON(data); err == nil {
				return cached, cache.Hash(data), true, nil
			}
			// If deserialization fails, fall through to rebuild
		}
	}

	s, err = scene.Build(ds.Points, opts.SceneOptions(rs))
	if err != nil {
		return nil, "", false, err
	}
	data, err := sink.RenderJSON(s)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "serialize scene")
	}
	r.set(ctx, "scene", cacheKey, data, cache.TTLScene)

	return s, cache.Hash(data), false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, ds *Dataset, opts Options) (*scene.Scene, string, error) {
	s, hash, _, err := r.BuildWithCacheInfo(ctx, ds, opts)
	return s, hash, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// sceneHash addresses the cached artifacts; an empty hash is computed from s.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *scene.Scene, sceneHash string, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if sceneHash == "" {
		data, err := sink.RenderJSON(s)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize scene for cache key")
		}
		sceneHash = cache.Hash(data)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, "artifact", r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *scene.Scene, sceneHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, sceneHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// logger returns the per-call logger from opts, or the runner's.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// get reads a cache entry. Cache failures are logged and treated as misses.
func (r *Runner) get(ctx context.Context, kind, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "kind", kind, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, kind)
	return nil, false
}

// set writes a cache entry. Failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "kind", kind, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
