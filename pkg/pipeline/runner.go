package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barstack/pkg/cache"
	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/io"
	"github.com/matzehuels/barstack/pkg/render/column"
	"github.com/matzehuels/barstack/pkg/render/column/sink"
)

// Result holds the output of a pipeline run.
type Result struct {
	Geometry *column.Geometry

	// GeometryHash is a content hash of the computed geometry, suitable for
	// cache keys and API ETags.
	GeometryHash string

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	Stats struct {
		LoadTime   time.Duration
		BuildTime  time.Duration
		RenderTime time.Duration
		RowCount   int
	}

	CacheInfo struct {
		BuildHit  bool
		RenderHit bool
	}
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
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
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	// Resolve the definition once so both build and render see the merged
	// settings, with flags winning over the definition file.
	def, err := opts.resolveDefinition()
	if err != nil {
		return nil, err
	}
	opts.Definition = def
	opts.fillRenderDefaults(def)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	rows, err := r.LoadRows(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RowCount = len(rows)

	opts.Logger.Info("loaded rows",
		"rows", len(rows),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	geometry, buildHit, err := r.BuildWithCacheInfo(ctx, rows, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Geometry = geometry
	result.Stats.BuildTime = time.Since(buildStart)
	result.CacheInfo.BuildHit = buildHit

	// Compute geometry hash for cache keys and API responses
	if data, err := json.Marshal(geometry); err == nil {
		result.GeometryHash = cache.Hash(data)
	}

	opts.Logger.Info("built geometry",
		"mode", geometry.Mode,
		"bars", len(geometry.Bars),
		"whiskers", len(geometry.Whiskers),
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, geometry, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadRows returns the input rows, reading them from opts.RowsPath when
// they were not passed in directly.
func (r *Runner) LoadRows(opts Options) ([]any, error) {
	if len(opts.Rows) > 0 {
		return opts.Rows, nil
	}
	return io.ImportRows(opts.RowsPath)
}

// BuildWithCacheInfo computes geometry with caching and returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, rows []any, opts Options) (*column.Geometry, bool, error) {
	r.applyLogger(&opts)

	def, err := opts.resolveDefinition()
	if err != nil {
		return nil, false, err
	}
	sel, err := def.Selectors()
	if err != nil {
		return nil, false, err
	}
	geomOpts := opts.geometryOptions(def)
	if err := geomOpts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	// Compute cache key from the rows and the effective geometry options
	rowsData, err := json.Marshal(rows)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "serialize rows for cache key")
	}
	cacheKey := r.Keyer.GeometryKey(cache.Hash(rowsData), cache.GeometryKeyOpts{
		Mode:        string(geomOpts.Mode),
		BarWidth:    geomOpts.BarWidth,
		ClusterGap:  geomOpts.ClusterGap,
		Inset:       geomOpts.Inset,
		WhiskerSize: geomOpts.WhiskerSize,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached column.Geometry
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to rebuild
		}
	}

	geometry, err := column.Build(rows, sel, geomOpts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := json.Marshal(geometry); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGeometry)
		}
	}

	return geometry, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, rows []any, opts Options) (*column.Geometry, error) {
	geometry, _, err := r.BuildWithCacheInfo(ctx, rows, opts)
	return geometry, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, geometry *column.Geometry, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from the geometry
	data, err := json.Marshal(geometry)
	if err != nil {
		return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
	}
	geometryHash := cache.Hash(data)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(geometryHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(geometry, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(geometryHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, geometry *column.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, geometry, opts)
	return artifacts, err
}

func (r *Runner) renderFormat(geometry *column.Geometry, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(geometry, opts.sinkOptions()...)
	case FormatPNG:
		return sink.RenderPNG(geometry, opts.sinkOptions()...)
	case FormatJSON:
		return sink.RenderJSON(geometry,
			sink.WithJSONTitle(opts.Title),
			sink.WithJSONSeriesLabels(opts.SeriesLabels))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
