package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/geotile"
	"github.com/hupe1980/geotile/resource"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DefaultMaxRecords is the tile capacity used when none is configured.
const DefaultMaxRecords = 10000

type app struct {
	cfg        Config
	configPath string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	isTTY  func() bool

	logger    *geotile.Logger
	resources *resource.Controller
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{in: in, out: out, errOut: errOut}
	a.isTTY = func() bool {
		f, ok := a.in.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
	return a
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "geotile",
		Short:         "Divide and extract building footprints",
		Long:          "Download building footprint datasets, divide them into density-adaptive tiles and extract the buildings inside a bounding box.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.configPath == "" {
				a.configPath = os.Getenv(envPrefix + "CONFIG")
			}
			if err := resolveConfig(cmd, a.configPath, &a.cfg); err != nil {
				return err
			}
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (env GEOTILE_CONFIG)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.cfg.Store, "store", "local", "Blob store (local, s3, minio)")
	flags.StringVar(&a.cfg.Bucket, "bucket", "", "Bucket for s3 and minio stores")
	flags.StringVar(&a.cfg.Prefix, "prefix", "", "Key prefix inside the bucket")
	flags.StringVar(&a.cfg.Endpoint, "endpoint", "", "Endpoint for S3-compatible stores")
	flags.StringVar(&a.cfg.Region, "region", "", "AWS region")
	flags.StringVar(&a.cfg.CommitTable, "commit-table", "", "DynamoDB table for atomic manifest commits (s3 only)")
	flags.StringVar(&a.cfg.Compression, "compression", "none", "Tile compression (none, lz4, zstd)")

	rootCmd.AddCommand(newDownloadCmd(a))
	rootCmd.AddCommand(newDivideCmd(a))
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newTilesCmd(a))

	return rootCmd
}

func (a *app) init() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", a.cfg.LogLevel)
	}
	a.logger = geotile.NewLogger(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	if a.cfg.MaxRecords == 0 {
		a.cfg.MaxRecords = DefaultMaxRecords
	}
	a.resources = resource.NewController(resource.Config{
		MemoryLimitBytes:       a.cfg.CacheBytes,
		MaxConcurrentDownloads: int64(a.cfg.MaxDownloads),
		IOLimitBytesPerSec:     a.cfg.IOLimit,
	})
	return nil
}

// options returns the partitioner and extractor options for location.
func (a *app) options(location string) ([]geotile.Option, error) {
	alg, err := geotile.ParseCompression(a.cfg.Compression)
	if err != nil {
		return nil, err
	}
	opts := []geotile.Option{
		geotile.WithLogger(a.logger),
		geotile.WithCompression(alg),
		geotile.WithResourceController(a.resources),
	}
	if location != "" {
		opts = append(opts, geotile.WithLocation(location))
	}
	return opts, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
