package geotile

import (
	"log/slog"
	"strings"

	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/internal/grid"
	"github.com/hupe1980/geotile/resource"
)

// DefaultTilePrefix is the blob prefix under which tiles are stored.
const DefaultTilePrefix = "tiles/"

type options struct {
	codec            codec.Codec
	compression      Compression
	gridSize         int
	minCellSize      float64
	maxDepth         int
	tilePrefix       string
	location         string
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Controller
}

// Option configures a Partitioner or Extractor.
//
// Options that only matter to one of them are ignored by the other.
type Option func(*options)

// WithCodec configures the codec used for tile payloads.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the tile payload compression.
// Compression is skipped per tile when it does not pay off.
func WithCompression(a Compression) Option {
	return func(o *options) {
		o.compression = a
	}
}

// WithGridSize sets the number of rows and columns of the initial grid.
// The default of 10 yields about 100 top-level cells.
func WithGridSize(n int) Option {
	return func(o *options) {
		o.gridSize = n
	}
}

// WithMinCellSize sets the cell size in degrees below which cells are never
// split. Overfull cells at this size are chunked instead.
func WithMinCellSize(deg float64) Option {
	return func(o *options) {
		o.minCellSize = deg
	}
}

// WithMaxDepth bounds the number of quadrant splits below a grid cell.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithTilePrefix sets the blob prefix for tiles. A trailing slash is added
// when missing.
func WithTilePrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		o.tilePrefix = prefix
	}
}

// WithLocation names the dataset. It is stored in the manifest and added to
// log records.
func WithLocation(location string) Option {
	return func(o *options) {
		o.location = location
	}
}

// WithResourceController throttles tile reads through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection (default).
//
// Example with basic collector:
//
//	metrics := &geotile.BasicMetricsCollector{}
//	p := geotile.NewPartitioner(store, geotile.WithMetricsCollector(metrics))
//	// ... partition ...
//	stats := metrics.GetStats()
//	fmt.Printf("Tiles: %d, Bytes: %d\n", stats.TilesWritten, stats.BytesWritten)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := geotile.NewJSONLogger(slog.LevelInfo)
//	p := geotile.NewPartitioner(store, geotile.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      CompressionNone,
		gridSize:         grid.DefaultGridSize,
		minCellSize:      grid.DefaultMinCellSize,
		maxDepth:         grid.DefaultMaxDepth,
		tilePrefix:       DefaultTilePrefix,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.location != "" {
		o.logger = o.logger.WithLocation(o.location)
	}
	return o
}
