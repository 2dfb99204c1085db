// Package bucket implements the multi-value container ("collection") that a
// tree leaf slot falls back to once a second payload arrives under the same
// key: a header holding a small inline array, overflowing into a doubly
// linked list of fixed-capacity chunks. The chunk list itself is the same
// fake-sentinel-free doubly linked shape used for an LRU list elsewhere in
// this codebase's ancestry, cut down to the single forward/backward pair a
// tail-shrinking list actually needs.
//
// Package bucket is payload-type agnostic: it stores unsafe.Pointer values
// and never dereferences them. The NaN discrimination that tells a tree leaf
// slot "this is a Header, not a bare payload" lives in package slot, because
// it needs to know the payload's layout and bucket does not; bucket imports
// slot only for the canonical NaN it writes into Label.
package bucket

import (
	"unsafe"

	"github.com/flynn162/CollisionDetection/internal/slot"
	"github.com/flynn162/CollisionDetection/internal/tag"
)

// HeaderCapacity is the number of payload pointers a Header stores inline
// before it starts chaining Chunks. Sized, with ChunkCapacity, so each
// record is close to one cache line.
const HeaderCapacity = 5

// ChunkCapacity is the number of payload pointers a single Chunk stores.
const ChunkCapacity = 6

// Header is the head record of a multi-value bucket. Label occupies offset
// zero so the tree's slot discriminator can read it as a payload's leading
// float and recognize the canonical NaN tag.
type Header struct {
	Label   float32
	lastLen int
	first   *Chunk
	last    *Chunk
	inline  [HeaderCapacity]unsafe.Pointer
}

// Chunk is one node of the overflow chunk list.
type Chunk struct {
	data [ChunkCapacity]unsafe.Pointer
	prev *Chunk
	next *Chunk
}

// Next returns the chunk following c in the list, or nil at the tail.
func (c *Chunk) Next() *Chunk { return c.next }

// At returns the i'th payload pointer stored in c.
func (c *Chunk) At(i int) unsafe.Pointer { return c.data[i] }

// New allocates a bucket holding exactly first, the payload that was
// previously a bare leaf value before a second insert promoted the slot.
func New(first unsafe.Pointer) *Header {
	h := &Header{Label: slot.CanonicalNaN(), lastLen: 1}
	h.inline[0] = first
	return h
}

// headerLiveCount is how many of the inline slots are occupied: all of them
// once any chunk exists, otherwise exactly lastLen.
func (h *Header) headerLiveCount() int {
	if h.last != nil {
		return HeaderCapacity
	}
	return h.lastLen
}

// InlineCount exposes headerLiveCount for the iterator state machine.
func (h *Header) InlineCount() int { return h.headerLiveCount() }

// InlineAt returns the i'th payload pointer stored directly in the header.
func (h *Header) InlineAt(i int) unsafe.Pointer { return h.inline[i] }

// FirstChunk returns the first chunk in the overflow list, or nil if the
// bucket's contents still fit entirely in the header.
func (h *Header) FirstChunk() *Chunk { return h.first }

// LastChunkLen returns how many of the tail chunk's slots are occupied.
// Only meaningful when FirstChunk is non-nil.
func (h *Header) LastChunkLen() int { return h.lastLen }

// Len returns the total number of payloads held by the bucket.
func (h *Header) Len() int {
	if h.last == nil {
		return h.lastLen
	}
	n := HeaderCapacity + h.lastLen
	for c := h.first; c != h.last; c = c.next {
		n += ChunkCapacity
	}
	return n
}

// IsSingleton reports whether the bucket holds exactly one payload. Callers
// must collapse a singleton bucket back to a bare pointer; Header does not
// do this itself since the bare-pointer slot lives in the tree, not here.
func (h *Header) IsSingleton() bool { return h.last == nil && h.lastLen == 1 }

// IsEmpty reports whether the bucket holds no payloads. A well-formed
// bucket is never empty; this exists for debug assertions.
func (h *Header) IsEmpty() bool { return h.last == nil && h.lastLen == 0 }

// Sole returns the bucket's one payload. The caller must first confirm
// IsSingleton.
func (h *Header) Sole() unsafe.Pointer { return h.inline[0] }

// Add appends p to the bucket. Amortized O(1): it only allocates a new
// chunk once every ChunkCapacity calls (or HeaderCapacity, for the first
// overflow out of the header).
func (h *Header) Add(p unsafe.Pointer) {
	switch {
	case h.last == nil && h.lastLen < HeaderCapacity:
		h.inline[h.lastLen] = p
		h.lastLen++
	case h.last == nil:
		c := &Chunk{}
		c.data[0] = p
		h.first, h.last = c, c
		h.lastLen = 1
	case h.lastLen < ChunkCapacity:
		h.last.data[h.lastLen] = p
		h.lastLen++
	default:
		c := &Chunk{prev: h.last}
		c.data[0] = p
		h.last.next = c
		h.last = c
		h.lastLen = 1
	}
}

// location names one payload slot: either inline[idx] (chunk == nil) or
// chunk.data[idx].
type location struct {
	chunk *Chunk
	idx   int
}

func (h *Header) valueAt(loc location) unsafe.Pointer {
	if loc.chunk == nil {
		return h.inline[loc.idx]
	}
	return loc.chunk.data[loc.idx]
}

func (h *Header) setValueAt(loc location, v unsafe.Pointer) {
	if loc.chunk == nil {
		h.inline[loc.idx] = v
		return
	}
	loc.chunk.data[loc.idx] = v
}

// lastLocation finds where the bucket's last element lives.
func (h *Header) lastLocation() location {
	if h.last == nil {
		return location{chunk: nil, idx: h.lastLen - 1}
	}
	return location{chunk: h.last, idx: h.lastLen - 1}
}

// find scans the header inline array, then the chunk chain, for p.
// Behavior is undefined (per the operation's contract) if p is absent; this
// implementation returns found == false rather than misbehaving further.
func (h *Header) find(p unsafe.Pointer) (loc location, found bool) {
	for i := 0; i < h.headerLiveCount(); i++ {
		if h.inline[i] == p {
			return location{chunk: nil, idx: i}, true
		}
	}
	for c := h.first; c != nil; c = c.next {
		n := ChunkCapacity
		if c == h.last {
			n = h.lastLen
		}
		for i := 0; i < n; i++ {
			if c.data[i] == p {
				return location{chunk: c, idx: i}, true
			}
		}
	}
	return location{}, false
}

// Remove deletes one occurrence of p from the bucket, moving the bucket's
// last element into the vacated slot. It reports whether p was found.
//
// Removing down to a single remaining payload does not collapse the bucket
// back to a bare pointer; that is the tree's job, since the bare-pointer
// representation lives in the leaf slot, not in Header.
func (h *Header) Remove(p unsafe.Pointer) bool {
	target, found := h.find(p)
	if !found {
		return false
	}
	last := h.lastLocation()
	h.setValueAt(target, h.valueAt(last))

	h.lastLen--
	if h.last != nil && h.lastLen == 0 {
		freed := h.last
		h.last = freed.prev
		if tag.Debug {
			freed.prev = nil
			freed.next = nil
		}
		if h.last == nil {
			h.first = nil
			h.lastLen = HeaderCapacity
		} else {
			h.last.next = nil
			h.lastLen = ChunkCapacity
		}
	}
	return true
}
