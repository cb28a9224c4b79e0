package drm

import "sort"

// AtomicProperty is one (object, property, value) triple of an atomic request.
type AtomicProperty struct {
	ObjectID   uint32
	PropertyID uint32
	Value      uint64
}

// AtomicRequest accumulates property changes for a single MODE_ATOMIC call.
// It is the Go counterpart of drmModeAtomicReq.
type AtomicRequest struct {
	items []AtomicProperty
}

func NewAtomicRequest() *AtomicRequest {
	return &AtomicRequest{}
}

// Add appends a property change and returns the new number of entries.
func (r *AtomicRequest) Add(objectID, propertyID uint32, value uint64) int {
	r.items = append(r.items, AtomicProperty{ObjectID: objectID, PropertyID: propertyID, Value: value})
	return len(r.items)
}

func (r *AtomicRequest) Len() int {
	return len(r.items)
}

// Cursor returns a position that can later be passed to SetCursor to drop
// everything added after it.
func (r *AtomicRequest) Cursor() int {
	return len(r.items)
}

func (r *AtomicRequest) SetCursor(cursor int) {
	if cursor >= 0 && cursor < len(r.items) {
		r.items = r.items[:cursor]
	}
}

func (r *AtomicRequest) Properties() []AtomicProperty {
	out := make([]AtomicProperty, len(r.items))
	copy(out, r.items)
	return out
}

// flatten produces the four parallel arrays MODE_ATOMIC expects. Entries are grouped
// by object in ascending id order; a property set twice on the same object keeps the
// last value.
func (r *AtomicRequest) flatten() (objs, counts, props []uint32, values []uint64) {
	sorted := r.Properties()
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ObjectID != sorted[j].ObjectID {
			return sorted[i].ObjectID < sorted[j].ObjectID
		}
		return sorted[i].PropertyID < sorted[j].PropertyID
	})

	for i, item := range sorted {
		if i+1 < len(sorted) && sorted[i+1].ObjectID == item.ObjectID && sorted[i+1].PropertyID == item.PropertyID {
			continue
		}
		if len(objs) == 0 || objs[len(objs)-1] != item.ObjectID {
			objs = append(objs, item.ObjectID)
			counts = append(counts, 0)
		}
		counts[len(counts)-1]++
		props = append(props, item.PropertyID)
		values = append(values, item.Value)
	}
	return objs, counts, props, values
}
