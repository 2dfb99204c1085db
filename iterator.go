package collision

import (
	"unsafe"

	"github.com/flynn162/CollisionDetection/internal/bucket"
	"github.com/flynn162/CollisionDetection/internal/slot"
)

// iterState is the iterator's position within a batch entry: either
// reading straight from the batch, or having descended into a bucket's
// header inline array, or into one of its overflow chunks.
type iterState int

const (
	inBuffer iterState = iota
	inHeader
	inChunk
	ended
)

// Iterator expands one batch of raw slot pointers, as delivered by a
// single flush of the tree's iteration buffer, into a flat sequence of
// *Hitbox values. A batch entry is either a bare Hitbox pointer or a
// bucket head; the iterator is what hides that distinction from callers.
type Iterator struct {
	batch []unsafe.Pointer
	idx   int

	state   iterState
	header  *bucket.Header
	chunk   *bucket.Chunk
	counter int

	pending    *Hitbox
	hasPending bool
}

// NewIterator wraps a raw batch for traversal. Most callers never need
// this directly: Tree.RangeSearch, Search and BallQuery drive it
// internally on every flush of the tree's iteration buffer.
func NewIterator(batch []unsafe.Pointer) *Iterator {
	return &Iterator{batch: batch}
}

// HasNext pumps the state machine until it has a payload ready or the
// batch is exhausted.
func (it *Iterator) HasNext() bool {
	if it.hasPending {
		return true
	}
	for {
		switch it.state {
		case inBuffer:
			if it.idx >= len(it.batch) {
				it.state = ended
				return false
			}
			v := it.batch[it.idx]
			if slot.IsBucketHead(v) {
				it.header = (*bucket.Header)(v)
				it.counter = it.header.InlineCount()
				it.state = inHeader
				continue
			}
			it.deliver((*Hitbox)(v))
			it.idx++
			return true

		case inHeader:
			if it.counter > 0 {
				it.counter--
				it.deliver((*Hitbox)(it.header.InlineAt(it.counter)))
				return true
			}
			if it.header.FirstChunk() == nil {
				it.idx++
				it.state = inBuffer
				continue
			}
			it.chunk = it.header.FirstChunk()
			it.counter = it.chunkLiveCount()
			it.state = inChunk
			continue

		case inChunk:
			if it.counter > 0 {
				it.counter--
				it.deliver((*Hitbox)(it.chunk.At(it.counter)))
				return true
			}
			next := it.chunk.Next()
			if next == nil {
				it.idx++
				it.state = inBuffer
				continue
			}
			it.chunk = next
			it.counter = it.chunkLiveCount()
			continue

		case ended:
			return false
		}
	}
}

// Next returns the payload HasNext staged. Calling Next without a
// preceding true-returning HasNext is a programming error.
func (it *Iterator) Next() *Hitbox {
	if !it.hasPending && !it.HasNext() {
		panic("collision: Iterator.Next called with no pending element")
	}
	v := it.pending
	it.pending = nil
	it.hasPending = false
	return v
}

func (it *Iterator) deliver(h *Hitbox) {
	it.pending = h
	it.hasPending = true
}

// chunkLiveCount is the occupancy to start draining a freshly entered
// chunk with: full capacity if another chunk follows, otherwise the
// header's recorded trailing length.
func (it *Iterator) chunkLiveCount() int {
	if it.chunk.Next() != nil {
		return bucket.ChunkCapacity
	}
	return it.header.LastChunkLen()
}
