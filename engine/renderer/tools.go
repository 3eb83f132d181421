package renderer

import "fmt"

// InstanceBuffer wraps a GPU vertex buffer holding packed per-instance
// records for one batch key. The buffer grows when the record data outgrows
// its capacity and is otherwise rewritten in place, so stable instance counts
// never reallocate.
type InstanceBuffer struct {
	label    string
	buf      Buffer
	capacity uint64
	count    uint32
}

// NewInstanceBuffer creates an empty instance buffer. No GPU allocation
// happens until the first Update.
//
// Parameters:
//   - label: debug label for the underlying GPU buffer
//
// Returns:
//   - *InstanceBuffer: the empty buffer
func NewInstanceBuffer(label string) *InstanceBuffer {
	return &InstanceBuffer{label: label}
}

// Update uploads the packed record array, reallocating only when the data no
// longer fits. Capacity never shrinks.
//
// Parameters:
//   - b: the backend to allocate and write through
//   - data: packed instance records
//   - stride: size of one record in bytes; len(data) must be a multiple
func (ib *InstanceBuffer) Update(b Backend, data []byte, stride uint64) {
	if len(data)%int(stride) != 0 {
		panic(fmt.Sprintf("instance data length %d is not a multiple of stride %d", len(data), stride))
	}
	if ib.buf == nil || uint64(len(data)) > ib.capacity {
		if ib.buf != nil {
			ib.buf.Release()
		}
		ib.buf = b.CreateBufferInit(ib.label, data, BufferUsageVertex)
		ib.capacity = uint64(len(data))
	} else {
		b.WriteBuffer(ib.buf, 0, data)
	}
	ib.count = uint32(len(data) / int(stride))
}

// Count returns the number of instance records the buffer currently holds.
func (ib *InstanceBuffer) Count() uint32 {
	return ib.count
}

// Buffer returns the underlying GPU buffer, or nil before the first Update.
func (ib *InstanceBuffer) Buffer() Buffer {
	return ib.buf
}

// Release frees the GPU buffer.
func (ib *InstanceBuffer) Release() {
	if ib.buf != nil {
		ib.buf.Release()
		ib.buf = nil
	}
	ib.capacity = 0
	ib.count = 0
}

// BatchMap owns the per-key instance buffers for one pipeline. Reconcile is
// the per-frame diff: keys present in the new accumulation are updated or
// created, keys absent this frame are destroyed. Iteration order across keys
// is map order and carries no guarantee.
type BatchMap[K comparable] struct {
	label   string
	stride  uint64
	buffers map[K]*InstanceBuffer
}

// NewBatchMap creates an empty batch map.
//
// Parameters:
//   - label: debug label prefix for created instance buffers
//   - stride: size of one packed instance record in bytes
//
// Returns:
//   - *BatchMap[K]: the empty map
func NewBatchMap[K comparable](label string, stride uint64) *BatchMap[K] {
	return &BatchMap[K]{
		label:   label,
		stride:  stride,
		buffers: make(map[K]*InstanceBuffer),
	}
}

// Reconcile diffs the new per-key record accumulation against the buffers
// held from the previous frame: surviving keys are updated in place (growing
// if needed), new keys get fresh buffers, and keys missing from live have
// their buffers released and dropped.
//
// Parameters:
//   - b: the backend to allocate and write through
//   - live: packed record arrays keyed by batch key for this frame
func (m *BatchMap[K]) Reconcile(b Backend, live map[K][]byte) {
	stale := make(map[K]bool, len(m.buffers))
	for k := range m.buffers {
		stale[k] = true
	}

	for k, data := range live {
		delete(stale, k)
		ib, ok := m.buffers[k]
		if !ok {
			ib = NewInstanceBuffer(m.label + " instances")
			m.buffers[k] = ib
		}
		ib.Update(b, data, m.stride)
	}

	for k := range stale {
		m.buffers[k].Release()
		delete(m.buffers, k)
	}
}

// Each calls fn for every live batch.
func (m *BatchMap[K]) Each(fn func(k K, ib *InstanceBuffer)) {
	for k, ib := range m.buffers {
		fn(k, ib)
	}
}

// Lookup returns the instance buffer for a key, if live.
func (m *BatchMap[K]) Lookup(k K) (*InstanceBuffer, bool) {
	ib, ok := m.buffers[k]
	return ib, ok
}

// Len returns the number of live batch keys.
func (m *BatchMap[K]) Len() int {
	return len(m.buffers)
}

// ReleaseAll frees every buffer and empties the map.
func (m *BatchMap[K]) ReleaseAll() {
	for k, ib := range m.buffers {
		ib.Release()
		delete(m.buffers, k)
	}
}

// PruneCache drops every cache entry whose key is not in used, releasing the
// evicted values. Pipelines run this on their mesh and texture caches at the
// end of each prep so the caches hold exactly the resources the current frame
// references.
//
// Parameters:
//   - cache: the resource cache to prune in place
//   - used: the set of keys referenced this frame
//   - release: called once per evicted value to free its GPU resources
func PruneCache[K comparable, V any](cache map[K]V, used map[K]bool, release func(V)) {
	for k, v := range cache {
		if !used[k] {
			release(v)
			delete(cache, k)
		}
	}
}
