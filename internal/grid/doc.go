// Package grid implements adaptive subdivision of a bounding box into cells
// holding at most a fixed number of items.
//
// Items are points (the centers of record bounding boxes). The box is first
// cut into a uniform G x G grid. Any cell holding more than the limit is
// split into four quadrants, and so on, until every cell is within the limit
// or reaches the floor (minimum cell size or maximum depth). Floor cells
// still over the limit are chunked in item order.
//
// Subdivision runs on an explicit stack, so clustered input cannot exhaust
// the goroutine stack.
//
// # Boundary Rule
//
// Cells are closed on their upper edges. A point exactly on an inner
// boundary belongs to the lower-indexed (south or west) cell, which makes
// assignment deterministic.
package grid
