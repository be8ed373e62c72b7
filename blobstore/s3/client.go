package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/geotile/blobstore"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config describes how to reach a bucket.
type Config struct {
	Bucket string
	Prefix string

	// Region overrides the region from the shared AWS config.
	Region string
	// Endpoint overrides the S3 endpoint (LocalStack, S3-compatible gateways).
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool

	// AccessKeyID and SecretAccessKey, when both set, replace the default
	// credential chain.
	AccessKeyID     string
	SecretAccessKey string

	// CommitTable names a DynamoDB table used for atomic CURRENT commits.
	// Empty disables the commit store.
	CommitTable string

	Upload UploadConfig
}

// New loads AWS configuration and returns a store for cfg.Bucket. When
// cfg.CommitTable is set the result is a *DDBCommitStore, otherwise a *Store.
func New(ctx context.Context, cfg Config) (blobstore.BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := NewStore(client, cfg.Bucket, cfg.Prefix, WithUploadConfig(cfg.Upload))
	if cfg.CommitTable == "" {
		return store, nil
	}

	ddb := dynamodb.NewFromConfig(awsCfg)
	baseURI := fmt.Sprintf("s3://%s/%s", cfg.Bucket, cfg.Prefix)
	return NewDDBCommitStore(store, ddb, cfg.CommitTable, baseURI), nil
}
