// Package resource bounds the memory, concurrency and bandwidth that
// geotile spends outside its core algorithms.
//
// A single Controller is shared by:
//
//   - the tile read cache (internal/cache), which reserves memory per cached
//     tile and declines to cache once the budget is spent
//   - the dataset downloader (source), which holds one download slot per
//     in-flight part and throttles response bodies through Reader
//
// A nil *Controller is valid and imposes no limits.
package resource
