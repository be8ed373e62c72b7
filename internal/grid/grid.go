package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/hupe1980/geotile/geom"
	"github.com/paulmach/orb"
)

const (
	// DefaultGridSize is the number of initial rows and columns.
	DefaultGridSize = 10
	// DefaultMinCellSize is the cell size in degrees below which cells are
	// never split.
	DefaultMinCellSize = 1e-7
	// DefaultMaxDepth bounds the number of quadrant splits below a grid cell.
	DefaultMaxDepth = 32
)

var (
	// ErrInvalidConfig is returned for a non-positive limit or grid size.
	ErrInvalidConfig = errors.New("grid: invalid config")
)

// Config controls subdivision.
type Config struct {
	// MaxPerCell is the item limit per emitted leaf. Must be >= 1.
	MaxPerCell  int
	GridSize    int
	MinCellSize float64
	MaxDepth    int
}

func (c Config) withDefaults() Config {
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.MinCellSize == 0 {
		c.MinCellSize = DefaultMinCellSize
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.MaxPerCell < 1:
		return fmt.Errorf("%w: max per cell %d", ErrInvalidConfig, c.MaxPerCell)
	case c.GridSize < 1:
		return fmt.Errorf("%w: grid size %d", ErrInvalidConfig, c.GridSize)
	case c.MinCellSize < 0 || math.IsNaN(c.MinCellSize):
		return fmt.Errorf("%w: min cell size %g", ErrInvalidConfig, c.MinCellSize)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Leaf is a finalized cell with at least one item.
type Leaf struct {
	// Key identifies the leaf: "r<row>c<col>", then "-" and one quadrant
	// digit per split, then "_<chunk>" for chunks of an overfull floor cell.
	Key   string
	Cell  geom.BoundingBox
	Depth int
	// Items are indexes into the input slice, in input order.
	Items []int
	// Floor is set when the cell could not be split further.
	Floor bool
}

// Result is the outcome of a subdivision.
type Result struct {
	Leaves   []Leaf
	Splits   int
	MaxDepth int
	// Chunked counts floor cells that had to be chunked.
	Chunked int
}

type pending struct {
	base  string
	path  string // one quadrant digit per split
	cell  geom.BoundingBox
	depth int
	items []int
}

// Partition subdivides bounds so that every leaf holds at most
// cfg.MaxPerCell of the given points. Points outside bounds are clamped
// into the nearest border cell. Leaves are returned in pre-order: grid
// cells row-major from the south-west, quadrants in SW, SE, NW, NE order.
func Partition(ctx context.Context, bounds geom.BoundingBox, points []orb.Point, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	if len(points) == 0 {
		return res, nil
	}

	g := cfg.GridSize
	cells := make([][]int, g*g)
	for i, p := range points {
		col := axisIndex(p.Lon(), bounds.MinLon, bounds.MaxLon, g)
		row := axisIndex(p.Lat(), bounds.MinLat, bounds.MaxLat, g)
		cells[row*g+col] = append(cells[row*g+col], i)
	}

	// LIFO: push in reverse so the first cell pops first.
	stack := make([]pending, 0, len(cells))
	for i := len(cells) - 1; i >= 0; i-- {
		if len(cells[i]) == 0 {
			continue
		}
		row, col := i/g, i%g
		stack = append(stack, pending{
			base: fmt.Sprintf("r%dc%d", row, col),
			cell: geom.BoundingBox{
				MinLat: edge(bounds.MinLat, bounds.MaxLat, g, row),
				MinLon: edge(bounds.MinLon, bounds.MaxLon, g, col),
				MaxLat: edge(bounds.MinLat, bounds.MaxLat, g, row+1),
				MaxLon: edge(bounds.MinLon, bounds.MaxLon, g, col+1),
			},
			items: cells[i],
		})
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res.MaxDepth = max(res.MaxDepth, c.depth)

		if len(c.items) <= cfg.MaxPerCell {
			res.Leaves = append(res.Leaves, Leaf{Key: c.key(), Cell: c.cell, Depth: c.depth, Items: c.items})
			continue
		}

		if atFloor(c, cfg) {
			res.Chunked++
			res.Leaves = append(res.Leaves, chunk(c, cfg.MaxPerCell)...)
			continue
		}

		res.Splits++
		quads := split(c, points)
		for q := 3; q >= 0; q-- {
			if len(quads[q].items) > 0 {
				stack = append(stack, quads[q])
			}
		}
	}

	return res, nil
}

func (c pending) key() string {
	if c.path == "" {
		return c.base
	}
	return c.base + "-" + c.path
}

func atFloor(c pending, cfg Config) bool {
	if c.depth >= cfg.MaxDepth {
		return true
	}
	return c.cell.Width() <= cfg.MinCellSize && c.cell.Height() <= cfg.MinCellSize
}

// split distributes the items of c over its quadrants 0=SW, 1=SE, 2=NW, 3=NE.
func split(c pending, points []orb.Point) [4]pending {
	midLon := (c.cell.MinLon + c.cell.MaxLon) / 2
	midLat := (c.cell.MinLat + c.cell.MaxLat) / 2

	var quads [4]pending
	for q := range quads {
		cell := c.cell
		if q&1 == 0 {
			cell.MaxLon = midLon
		} else {
			cell.MinLon = midLon
		}
		if q&2 == 0 {
			cell.MaxLat = midLat
		} else {
			cell.MinLat = midLat
		}
		quads[q] = pending{base: c.base, path: c.path + strconv.Itoa(q), cell: cell, depth: c.depth + 1}
	}

	for _, i := range c.items {
		q := 0
		if points[i].Lon() > midLon {
			q |= 1
		}
		if points[i].Lat() > midLat {
			q |= 2
		}
		quads[q].items = append(quads[q].items, i)
	}
	return quads
}

func chunk(c pending, k int) []Leaf {
	n := (len(c.items) + k - 1) / k
	leaves := make([]Leaf, 0, n)
	for i := 0; i < n; i++ {
		end := min((i+1)*k, len(c.items))
		leaves = append(leaves, Leaf{
			Key:   fmt.Sprintf("%s_%d", c.key(), i),
			Cell:  c.cell,
			Depth: c.depth,
			Items: c.items[i*k : end],
			Floor: true,
		})
	}
	return leaves
}

// edge returns the i-th of g+1 cell boundaries between lo and hi. The last
// boundary is exactly hi.
func edge(lo, hi float64, g, i int) float64 {
	if i >= g {
		return hi
	}
	return lo + (hi-lo)*float64(i)/float64(g)
}

// axisIndex returns the cell index of v along one axis. A value on an inner
// boundary maps to the lower cell.
func axisIndex(v, lo, hi float64, g int) int {
	if hi <= lo || v <= lo {
		return 0
	}
	i := int(math.Ceil((v-lo)/(hi-lo)*float64(g))) - 1
	i = max(0, min(i, g-1))
	// Correct rounding so the result agrees with edge.
	for i > 0 && v <= edge(lo, hi, g, i) {
		i--
	}
	for i < g-1 && v > edge(lo, hi, g, i+1) {
		i++
	}
	return i
}
