package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
	"github.com/paulmach/orb"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Square returns an axis-aligned square polygon with its south-west corner
// at (lon, lat).
func Square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon, lat}, {lon + size, lat}, {lon + size, lat + size}, {lon, lat + size}, {lon, lat},
	}}
}

// Footprint returns a square footprint record.
func Footprint(id model.RecordID, lon, lat, size float64) model.Record {
	return model.Record{
		ID:         id,
		Geometry:   geom.NewPolygon(Square(lon, lat, size)),
		Height:     model.Float(float64(3 + id%20)),
		Confidence: 0.9,
	}
}

// PointCluster returns n point-like footprints that all sit on (lon, lat).
// IDs are 1..n.
func PointCluster(n int, lon, lat float64) []model.Record {
	recs := make([]model.Record, n)
	for i := range recs {
		recs[i] = model.Record{
			ID:         model.RecordID(i + 1),
			Geometry:   geom.NewPolygon(orb.Polygon{orb.Ring{{lon, lat}, {lon, lat}, {lon, lat}, {lon, lat}}}),
			Confidence: 1,
		}
	}
	return recs
}

// Footprints returns n random footprints with south-west corners uniform in
// area and sizes in (0, maxSize]. Footprints are clipped to stay inside
// valid WGS84 range. IDs are 1..n.
func (r *RNG) Footprints(n int, area geom.BoundingBox, maxSize float64) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := make([]model.Record, n)
	for i := range recs {
		lon := area.MinLon + r.rand.Float64()*area.Width()
		lat := area.MinLat + r.rand.Float64()*area.Height()
		recs[i] = r.footprintLocked(model.RecordID(i+1), lon, lat, maxSize)
	}
	return recs
}

// HotspotFootprints returns n footprints concentrated around a few hotspots.
// Hotspot popularity follows a Zipf distribution with exponent s, so a small
// number of cells receive most records. IDs are 1..n.
func (r *RNG) HotspotFootprints(n int, area geom.BoundingBox, hotspots int, s float64) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]orb.Point, hotspots)
	for i := range centers {
		centers[i] = orb.Point{
			area.MinLon + r.rand.Float64()*area.Width(),
			area.MinLat + r.rand.Float64()*area.Height(),
		}
	}

	spread := math.Min(area.Width(), area.Height()) / 100
	recs := make([]model.Record, n)
	for i := range recs {
		c := centers[r.zipfLocked(hotspots, s)]
		lon := clamp(c.Lon()+r.rand.NormFloat64()*spread, area.MinLon, area.MaxLon)
		lat := clamp(c.Lat()+r.rand.NormFloat64()*spread, area.MinLat, area.MaxLat)
		recs[i] = r.footprintLocked(model.RecordID(i+1), lon, lat, spread/10)
	}
	return recs
}

func (r *RNG) footprintLocked(id model.RecordID, lon, lat, maxSize float64) model.Record {
	size := maxSize * (1 - r.rand.Float64())
	size = math.Min(size, math.Min(180-lon, 90-lat))
	rec := Footprint(id, lon, lat, size)
	rec.Confidence = math.Round(r.rand.Float64()*100) / 100
	if r.rand.Intn(4) == 0 {
		rec.Height = nil
	}
	return rec
}

// zipfLocked returns an index in [0,n) with P(i) proportional to 1/(i+1)^s.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	var total float64
	for i := 1; i <= n; i++ {
		total += 1 / math.Pow(float64(i), s)
	}
	u := r.rand.Float64() * total
	for i := 1; i <= n; i++ {
		u -= 1 / math.Pow(float64(i), s)
		if u <= 0 {
			return i - 1
		}
	}
	return n - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// BruteForce returns the sorted IDs of all records whose geometry
// intersects query. It is the ground truth for extraction tests.
func BruteForce(recs []model.Record, query geom.BoundingBox) []model.RecordID {
	ids := []model.RecordID{}
	for _, rec := range recs {
		if rec.Geometry.IntersectsBox(query) {
			ids = append(ids, rec.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SortedIDs returns the record IDs of b in ascending order.
func SortedIDs(b *model.Batch) []model.RecordID {
	ids := b.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
