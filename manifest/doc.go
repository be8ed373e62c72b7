// Package manifest persists the tile index of a partitioned dataset.
//
// # Overview
//
// A manifest is a snapshot of one partition run: the dataset bounds, the
// partitioning parameters, the codec and compression used for tile payloads,
// and the list of tiles with their bounds and storage locations.
//
// # Atomic Protocol
//
// Save follows a two-phase commit protocol on top of a blobstore.BlobStore:
//
//  1. Write the manifest blob to MANIFEST-NNNNNN.json (N is the manifest ID)
//  2. Update the CURRENT pointer blob to reference the new manifest
//
// Tiles are written before either step, so a reader following CURRENT never
// sees a manifest that references missing tiles. On local filesystems step 2
// is an atomic rename. On S3 the DynamoDB commit store serializes CURRENT
// updates.
//
// Load reads CURRENT to find the active manifest, then loads that blob.
//
// # Legacy Layout
//
// Directories produced by older tooling contain a <location>_metadata.json
// file mapping each tile file name to its cell corners (x = lon, y = lat).
// LoadLegacy converts such a file into a Manifest so the same extraction path
// serves both layouts.
package manifest
