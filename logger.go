package geotile

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
)

// Logger wraps slog.Logger with geotile-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithLocation adds a location field to the logger.
func (l *Logger) WithLocation(location string) *Logger {
	return &Logger{
		Logger: l.Logger.With("location", location),
	}
}

// WithTile adds a tile field to the logger.
func (l *Logger) WithTile(id model.TileID) *Logger {
	return &Logger{
		Logger: l.Logger.With("tile", string(id)),
	}
}

// LogPartition logs a partition run.
func (l *Logger) LogPartition(ctx context.Context, r *PartitionReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partition failed",
			"records", r.Records,
			"skipped", r.Skipped,
			"tiles_written", r.Tiles,
			"error", err,
		)
		return
	}
	if r.Skipped > 0 {
		l.WarnContext(ctx, "partition completed with skipped records",
			"records", r.Records,
			"skipped", r.Skipped,
			"tiles", r.Tiles,
			"manifest", r.ManifestID,
		)
		return
	}
	l.InfoContext(ctx, "partition completed",
		"records", r.Records,
		"tiles", r.Tiles,
		"splits", r.Splits,
		"max_depth", r.MaxDepth,
		"manifest", r.ManifestID,
		"duration", r.Duration,
	)
}

// LogExtract logs an extraction.
func (l *Logger) LogExtract(ctx context.Context, query geom.BoundingBox, r *ExtractReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "extract failed",
			"query", query.String(),
			"error", err,
		)
		return
	}
	if len(r.Failures) > 0 {
		l.WarnContext(ctx, "extract completed with skipped tiles",
			"query", query.String(),
			"candidates", r.Candidates,
			"failed_tiles", len(r.Failures),
			"matched", r.Matched,
		)
		return
	}
	l.InfoContext(ctx, "extract completed",
		"query", query.String(),
		"candidates", r.Candidates,
		"scanned", r.RecordsScanned,
		"matched", r.Matched,
		"duration", r.Duration,
	)
}

// LogTileSkipped logs a candidate tile that could not be read.
func (l *Logger) LogTileSkipped(ctx context.Context, err *StorageReadError) {
	l.WarnContext(ctx, "tile skipped",
		"tile", string(err.TileID),
		"location", err.Location,
		"error", err.Err,
	)
}

// LogRecordSkipped logs an input record with invalid geometry.
func (l *Logger) LogRecordSkipped(ctx context.Context, id model.RecordID, err error) {
	l.DebugContext(ctx, "record skipped",
		"id", uint64(id),
		"error", err,
	)
}

// LogTileWritten logs a stored tile.
func (l *Logger) LogTileWritten(ctx context.Context, t model.Tile, bytes int) {
	l.DebugContext(ctx, "tile written",
		"tile", string(t.ID),
		"records", t.RecordCount,
		"bytes", bytes,
		"depth", t.Depth,
	)
}
