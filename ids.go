package sbdyn

// IDAllocator issues the effector identifiers used to build unique state names.
// It is owned by whoever constructs the simulation and is only reset explicitly.
type IDAllocator struct {
	next uint64
}

// NewIDAllocator returns an allocator whose first identifier is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the next identifier.
func (a *IDAllocator) Next() uint64 {
	if a.next == 0 {
		a.next = 1
	}
	id := a.next
	a.next++
	return id
}

// Reset re-seeds the allocator so that the next identifier is 1.
func (a *IDAllocator) Reset() {
	a.next = 1
}
