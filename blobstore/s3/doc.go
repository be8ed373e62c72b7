// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, s3.Config{
//	    Bucket: "footprints",
//	    Prefix: "tiles/seattle",
//	    Region: "us-west-2",
//	})
//
//	p := geotile.NewPartitioner(store)
//
// Setting Config.CommitTable wraps the store in a DDBCommitStore so the
// CURRENT manifest pointer is swapped with a DynamoDB conditional write.
//
// # Features
//
//   - Range reads for tile loads
//   - Streaming multipart uploads via the S3 upload manager
//   - CRC32C integrity checks on small atomic puts
//   - Configurable prefix for multiple datasets per bucket
package s3
