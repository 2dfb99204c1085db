// Package collision is an in-memory ordered index over Hitbox payloads,
// keyed by float32. It supports multiple payloads per key and answers
// range and ball queries by streaming matches to a callback in batches
// rather than allocating a result slice, which is what makes dense range
// scans cheap.
//
// The heavy lifting is layered the way the system this package grew out of
// layered it: internal/bptree is a payload-agnostic B+ tree keyed by
// float32, internal/bucket is the multi-value container duplicate keys
// fall back to, and internal/slot is the NaN convention that lets a single
// tree slot hold either shape without a tag byte. Tree is the typed façade
// over all three — the Hitbox-aware layer, analogous to a generic
// container's typed wrapper over its untyped storage.
package collision

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/flynn162/CollisionDetection/internal/bptree"
	"github.com/flynn162/CollisionDetection/internal/bucket"
	"github.com/flynn162/CollisionDetection/internal/slot"
	"github.com/flynn162/CollisionDetection/log"
)

// Tree is an ordered multi-map from float32 keys to *Hitbox payloads. The
// zero value is not usable; construct one with NewTree. A Tree must not be
// used concurrently from multiple goroutines, and a callback passed to
// RangeSearch, Search or BallQuery must not call back into the same Tree.
type Tree struct {
	inner *bptree.Tree
	log   log.Logger
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithLogger attaches a logger. Without this option a Tree logs nothing.
func WithLogger(l log.Logger) Option {
	return func(t *Tree) { t.log = l }
}

// NewTree returns an empty Tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{inner: bptree.New(), log: log.NewLogger(log.DebugLevel, zap.NewNop())}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Insert adds h under key. Multiple payloads may share a key: the second
// insert at a key promotes the slot from a bare pointer to a bucket, and
// every subsequent insert at that key appends to the bucket.
func (t *Tree) Insert(key float32, h *Hitbox) error {
	if h == nil {
		return wrap(ErrNilPayload)
	}
	if slot.IsReserved(h.A1) {
		return wrap(ErrReservedNaNPayload)
	}

	p := unsafe.Pointer(h)
	old, existed, err := t.inner.Replace(key, p)
	if err != nil {
		return wrap(err)
	}
	if !existed {
		return nil
	}

	if slot.IsBucketHead(old) {
		hdr := (*bucket.Header)(old)
		hdr.Add(p)
		if _, _, err := t.inner.Replace(key, old); err != nil {
			return wrap(err)
		}
		t.log.Debugf("appended payload to bucket: key=%v size=%v", key, hdr.Len())
		return nil
	}

	hdr := bucket.New(old)
	hdr.Add(p)
	if _, _, err := t.inner.Replace(key, unsafe.Pointer(hdr)); err != nil {
		return wrap(err)
	}
	t.log.Debugf("promoted key to bucket: key=%v", key)
	return nil
}

// RangeSearch invokes fn once per payload whose key lies in [k0, k1],
// inclusive on both ends. fn may be called many times for a single call to
// RangeSearch; order within and across calls is unspecified.
func (t *Tree) RangeSearch(k0, k1 float32, fn func(*Hitbox)) error {
	acc := bptree.NewAcc(func(batch []unsafe.Pointer) {
		it := NewIterator(batch)
		for it.HasNext() {
			fn(it.Next())
		}
	})
	if err := t.inner.RangeSearch(k0, k1, acc); err != nil {
		return wrap(err)
	}
	return nil
}

// Search invokes fn once per payload stored under key.
func (t *Tree) Search(key float32, fn func(*Hitbox)) error {
	return t.RangeSearch(key, key, fn)
}

// BallQuery invokes fn once per payload whose key lies within rad+R of
// mag: range_search(mag-(rad+R), mag+(rad+R)).
func (t *Tree) BallQuery(mag, rad, r float32, fn func(*Hitbox)) error {
	return t.RangeSearch(mag-(rad+r), mag+(rad+r), fn)
}

// Remove deletes one occurrence of h from the bucket stored under key. If
// the bucket shrinks to a single payload it collapses back to a bare
// pointer automatically.
//
// Removing the sole payload under a key (there is no bucket to shrink) is
// not implemented: it would require deleting the tree's leaf slot outright,
// which this engine does not support (see ErrNotImplemented).
func (t *Tree) Remove(key float32, h *Hitbox) error {
	if h == nil {
		return wrap(ErrNilPayload)
	}
	old, found := t.inner.Get(key)
	if !found {
		return wrap(ErrKeyNotFound)
	}
	if !slot.IsBucketHead(old) {
		if old != unsafe.Pointer(h) {
			return wrap(ErrPayloadNotFound)
		}
		return wrap(ErrNotImplemented)
	}

	hdr := (*bucket.Header)(old)
	if !hdr.Remove(unsafe.Pointer(h)) {
		return wrap(ErrPayloadNotFound)
	}
	if hdr.IsSingleton() {
		if _, _, err := t.inner.Replace(key, hdr.Sole()); err != nil {
			return wrap(err)
		}
		t.log.Debugf("collapsed bucket to bare payload: key=%v", key)
	}
	return nil
}

// CheckSorted verifies that every key at or after since appears in strictly
// ascending order across the leaf chain. It is an invariant probe meant for
// tests, not a part of normal query processing.
func (t *Tree) CheckSorted(since float32) error {
	if err := t.inner.CheckSorted(since); err != nil {
		t.log.Errorf("sort invariant violated: %v", err)
		return wrap(err)
	}
	return nil
}

// CheckRootNonDegenerate verifies the tree's root is either an internal
// node or the sole leaf.
func (t *Tree) CheckRootNonDegenerate() error {
	if err := t.inner.CheckRootNonDegenerate(); err != nil {
		t.log.Errorf("root degeneracy invariant violated: %v", err)
		return wrap(err)
	}
	return nil
}
