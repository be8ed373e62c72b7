package model

import (
	"github.com/hupe1980/geotile/geom"
)

// Batch is an in-memory collection of records (a GeometryBatch).
// It has no behavior beyond iteration and bounding-box computation.
type Batch struct {
	Records []Record
}

// NewBatch wraps records in a Batch.
func NewBatch(records ...Record) *Batch {
	return &Batch{Records: records}
}

// Len returns the number of records.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// Append adds records to the batch.
func (b *Batch) Append(records ...Record) {
	b.Records = append(b.Records, records...)
}

// Each calls fn for every record in order until fn returns false.
func (b *Batch) Each(fn func(Record) bool) {
	if b == nil {
		return
	}
	for _, r := range b.Records {
		if !fn(r) {
			return
		}
	}
}

// IDs returns the record IDs in order.
func (b *Batch) IDs() []RecordID {
	ids := make([]RecordID, 0, b.Len())
	b.Each(func(r Record) bool {
		ids = append(ids, r.ID)
		return true
	})
	return ids
}

// Bound returns the union of all valid record bounding boxes and the number
// of records whose geometry could not produce one. ok is false when no
// record is valid.
func (b *Batch) Bound() (box geom.BoundingBox, invalid int, ok bool) {
	b.Each(func(r Record) bool {
		rb, err := r.Bound()
		if err != nil {
			invalid++
			return true
		}
		if !ok {
			box, ok = rb, true
		} else {
			box = box.Union(rb)
		}
		return true
	})
	return box, invalid, ok
}
