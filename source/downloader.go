package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/resource"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a download.
type Report struct {
	Parts    int
	Records  int
	Failures []*PartError
	Duration time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets the client used for all requests.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) {
		if c != nil {
			d.client = c
		}
	}
}

// WithLinksURL overrides DefaultLinksURL.
func WithLinksURL(url string) Option {
	return func(d *Downloader) {
		d.linksURL = url
	}
}

// WithResourceController bounds concurrent part downloads and throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(d *Downloader) {
		d.resources = rc
	}
}

// WithLogger sets the logger. Failed parts are logged at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// Downloader fetches a location of the remote dataset.
type Downloader struct {
	client    *http.Client
	linksURL  string
	resources *resource.Controller
	logger    *slog.Logger
}

// NewDownloader creates a downloader.
func NewDownloader(optFns ...Option) *Downloader {
	d := &Downloader{
		client:   &http.Client{Timeout: 10 * time.Minute},
		linksURL: DefaultLinksURL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(d)
	}
	return d
}

// Links fetches and parses the links CSV.
func (d *Downloader) Links(ctx context.Context) ([]Link, error) {
	body, err := d.get(ctx, d.linksURL)
	if err != nil {
		return nil, fmt.Errorf("source: links: %w", err)
	}
	defer body.Close()
	return ParseLinks(body)
}

// Download fetches every part of location and returns the combined batch.
//
// Parts are fetched in parallel. A part that fails is skipped and listed
// in the report; if every part fails the error is ErrNoData. Record IDs are
// assigned in part order, then line order, starting at 1.
func (d *Downloader) Download(ctx context.Context, location string) (*model.Batch, *Report, error) {
	start := time.Now()

	links, err := d.Links(ctx)
	if err != nil {
		return nil, nil, err
	}
	parts := Filter(links, location)
	if len(parts) == 0 {
		return nil, nil, &UnknownLocationError{Location: location, Available: Locations(links)}
	}

	batch, report, err := d.DownloadParts(ctx, parts)
	if report != nil {
		report.Duration = time.Since(start)
	}
	return batch, report, err
}

// DownloadParts fetches the given parts. See Download.
func (d *Downloader) DownloadParts(ctx context.Context, parts []Link) (*model.Batch, *Report, error) {
	start := time.Now()
	results := make([][]model.Record, len(parts))
	errs := make([]error, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.resources.MaxDownloads())

	for i, part := range parts {
		g.Go(func() error {
			if err := d.resources.AcquireDownload(gctx); err != nil {
				return err
			}
			defer d.resources.ReleaseDownload()

			recs, err := d.fetchPart(gctx, part)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &Report{Parts: len(parts)}
	batch := model.NewBatch()
	next := model.RecordID(1)
	for i, recs := range results {
		if errs[i] != nil {
			perr := &PartError{URL: parts[i].URL, Err: errs[i]}
			report.Failures = append(report.Failures, perr)
			d.logger.WarnContext(ctx, "part skipped", "quadkey", parts[i].QuadKey, "url", parts[i].URL, "error", errs[i])
			continue
		}
		for _, r := range recs {
			r.ID = next
			next++
			batch.Append(r)
		}
	}
	report.Records = batch.Len()
	report.Duration = time.Since(start)

	if len(report.Failures) == len(parts) {
		return nil, report, ErrNoData
	}
	return batch, report, nil
}

func (d *Downloader) fetchPart(ctx context.Context, part Link) ([]model.Record, error) {
	body, err := d.get(ctx, part.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r, err := MaybeGunzip(resource.NewReader(ctx, body, d.resources))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	recs, err := DecodeLines(r)
	if err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "part downloaded", "quadkey", part.QuadKey, "records", len(recs))
	return recs, nil
}

func (d *Downloader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}
