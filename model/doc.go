// Package model defines the core data types shared across geotile.
//
// # Identity Types
//
//   - RecordID: stable per-dataset identifier of a footprint (uint64)
//   - TileID: name of a tile, unique within one index
//
// # Data Types
//
//   - Record: one building footprint with height and confidence
//   - Batch: an in-memory collection of records (a GeometryBatch)
//   - Tile: metadata of one stored tile
package model
