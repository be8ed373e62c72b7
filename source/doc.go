// Package source reads building footprints into a model.Batch.
//
// Remote datasets are described by a links CSV with one row per dataset
// part (Location, QuadKey, Url, Size). A Downloader fetches every part of
// a location in parallel and decodes the gzip'd line-delimited GeoJSON.
// Local files are read with ReadFile, which accepts a FeatureCollection or
// line-delimited features.
package source
