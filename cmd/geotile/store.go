package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/hupe1980/geotile/blobstore"
	miniostore "github.com/hupe1980/geotile/blobstore/minio"
	s3store "github.com/hupe1980/geotile/blobstore/s3"
	"github.com/hupe1980/geotile/internal/cache"
)

// defaultCacheBytes sizes the read cache of remote stores.
const defaultCacheBytes = 256 << 20

// openStore returns the store rooted at dir. For remote stores dir is a key
// prefix below --prefix and reads go through an LRU block cache.
func (a *app) openStore(ctx context.Context, dir string) (blobstore.BlobStore, error) {
	var (
		store blobstore.BlobStore
		err   error
	)

	switch strings.ToLower(a.cfg.Store) {
	case "", "local":
		return blobstore.NewLocalStore(dir), nil
	case "s3":
		store, err = s3store.New(ctx, s3store.Config{
			Bucket:          a.cfg.Bucket,
			Prefix:          remotePrefix(a.cfg.Prefix, dir),
			Region:          a.cfg.Region,
			Endpoint:        a.cfg.Endpoint,
			UsePathStyle:    a.cfg.Endpoint != "",
			AccessKeyID:     a.cfg.AccessKey,
			SecretAccessKey: a.cfg.SecretKey,
			CommitTable:     a.cfg.CommitTable,
		})
	case "minio":
		if a.cfg.Bucket == "" || a.cfg.Endpoint == "" {
			return nil, fmt.Errorf("minio store needs --bucket and --endpoint")
		}
		host, secure := splitEndpoint(a.cfg.Endpoint)
		store, err = miniostore.Dial(host, a.cfg.AccessKey, a.cfg.SecretKey, secure, a.cfg.Bucket, remotePrefix(a.cfg.Prefix, dir))
	default:
		return nil, fmt.Errorf("unknown store %q: use local, s3 or minio", a.cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	capacity := a.cfg.CacheBytes
	if capacity <= 0 {
		capacity = defaultCacheBytes
	}
	return blobstore.NewCachingStore(store, cache.NewLRU(capacity, a.resources), 0), nil
}

// remotePrefix joins the configured prefix and a command's directory
// argument into a bucket key prefix.
func remotePrefix(prefix, dir string) string {
	p := path.Join(strings.Trim(prefix, "/"), strings.Trim(dir, "/"))
	if p == "." {
		return ""
	}
	return p
}

// splitEndpoint strips the scheme from endpoint. Endpoints without a scheme
// use TLS.
func splitEndpoint(endpoint string) (host string, secure bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	default:
		return endpoint, true
	}
}

// checkInput fails early when a local input directory is missing.
func (a *app) checkInput(dir string) error {
	if s := strings.ToLower(a.cfg.Store); s != "" && s != "local" {
		return nil
	}
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("the input folder %q does not exist", dir)
	}
	return nil
}
