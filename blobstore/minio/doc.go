// Package minio provides a BlobStore backed by the MinIO client.
//
// MinIO is an S3-compatible object store. This package uses the MinIO Go
// client directly, which also works with Ceph, SeaweedFS and Garage, and
// needs no AWS configuration.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "footprints", "seattle/")
//	p := geotile.NewPartitioner(store)
package minio
