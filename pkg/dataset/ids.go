package dataset

import "sync/atomic"

// IDAllocator hands out dataset ids. Ids increase by one per call and are
// never reused; it is safe for concurrent use.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator returns an allocator whose first id is first.
func NewIDAllocator(first int64) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(first)
	return a
}

// Next returns the next id.
func (a *IDAllocator) Next() int64 {
	return a.next.Add(1) - 1
}

// DefaultIDs is used when a constructor is given a nil allocator.
var DefaultIDs = NewIDAllocator(1)

func allocator(ids *IDAllocator) *IDAllocator {
	if ids == nil {
		return DefaultIDs
	}
	return ids
}
