// Package testutil provides testing utilities for geotile.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating synthetic building footprints and
// computing brute-force query results to compare indexed extraction against.
//
// # Synthetic Footprints
//
//	rng := testutil.NewRNG(seed)
//	recs := rng.Footprints(1000, area, 0.001)         // uniform
//	recs = rng.HotspotFootprints(1000, area, 5, 1.2) // Zipf-skewed hotspots
//	recs = testutil.PointCluster(10, -122.33, 47.61) // identical points
//
// # Ground Truth
//
//	ids := testutil.BruteForce(recs, query)
package testutil
