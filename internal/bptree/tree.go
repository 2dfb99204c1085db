package bptree

import (
	"math"
	"unsafe"

	"github.com/facebookgo/stackerr"
)

// Tree is the raw ordered multi-map engine. It stores one opaque
// unsafe.Pointer per distinct key; turning a duplicate insert into a
// multi-value bucket is the caller's responsibility (see package
// collision's Tree.Insert), which is also why Replace returns the value it
// overwrote rather than merging anything itself.
type Tree struct {
	root *node
}

// New returns a tree holding a single empty leaf root.
func New() *Tree {
	return &Tree{root: newLeaf()}
}

// Replace inserts value at key, returning the value previously stored
// there (existed == false if key was not present). It never merges; a
// second insert at an already-occupied key simply overwrites the slot.
func (t *Tree) Replace(key float32, value unsafe.Pointer) (old unsafe.Pointer, existed bool, err error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	liftedKey, sibling, split, old, existed := t.insert(t.root, key, value)
	if split {
		newRoot := newInternal()
		newRoot.keys[0] = liftedKey
		newRoot.setChild(0, t.root)
		newRoot.setChild(1, sibling)
		newRoot.weight = 1
		t.root = newRoot
	}
	return old, existed, nil
}

func (t *Tree) insert(n *node, key float32, value unsafe.Pointer) (liftedKey float32, sibling *node, split bool, old unsafe.Pointer, existed bool) {
	if n.isInternal() {
		i := n.descendIndex(key)
		child := n.child(i)
		ck, csib, csplit, old, existed := t.insert(child, key, value)
		if !csplit {
			return 0, nil, false, old, existed
		}
		filled := n.insertNonFull(ck, unsafe.Pointer(csib))
		if !filled {
			return 0, nil, false, old, existed
		}
		lk, sib := n.split()
		return lk, sib, true, old, existed
	}

	if idx := n.findInLeaf(key); idx >= 0 {
		old = n.values[idx+1]
		n.values[idx+1] = value
		return 0, nil, false, old, true
	}
	filled := n.insertNonFull(key, value)
	if !filled {
		return 0, nil, false, nil, false
	}
	lk, sib := n.split()
	return lk, sib, true, nil, false
}

// Get returns the raw value stored at key, if any.
func (t *Tree) Get(key float32) (value unsafe.Pointer, found bool) {
	leaf := t.findLeaf(key)
	idx := leaf.findInLeaf(key)
	if idx < 0 {
		return nil, false
	}
	return leaf.values[idx+1], true
}

func (t *Tree) findLeaf(key float32) *node {
	cur := t.root
	for cur.isInternal() {
		cur = cur.child(cur.descendIndex(key))
	}
	return cur
}

// RangeSearch pushes every value whose key lies in [k0, k1] into acc, in
// leaf order, flushing acc as it goes and once more at the end.
func (t *Tree) RangeSearch(k0, k1 float32, acc *Acc) error {
	if err := checkKey(k0); err != nil {
		return err
	}
	if err := checkKey(k1); err != nil {
		return err
	}
	if k0 > k1 {
		return stackerr.Newf("range_search: k0 %v > k1 %v", k0, k1)
	}

	leaf := t.findLeaf(k0)
	for leaf != nil {
		stop := false
		for i := 0; i < leaf.weight; i++ {
			k := leaf.keys[i]
			if k > k1 {
				stop = true
				break
			}
			if k >= k0 {
				acc.Put(leaf.values[i+1])
			}
		}
		acc.EnsureSpace()
		if stop {
			break
		}
		next := leaf.next
		if next != nil && next.weight > 0 && next.keys[0] > k1 {
			break
		}
		leaf = next
	}
	acc.Flush()
	return nil
}

// Search is RangeSearch(k, k, acc).
func (t *Tree) Search(k float32, acc *Acc) error {
	return t.RangeSearch(k, k, acc)
}

// CheckSorted walks the leaf chain starting from the leaf that would hold
// since and verifies keys are strictly ascending, both within a leaf and
// across the sibling boundary. It is a debug probe, not part of normal
// query processing.
func (t *Tree) CheckSorted(since float32) error {
	leaf := t.findLeaf(since)
	prev := float32(math.Inf(-1))
	for leaf != nil {
		for i := 0; i < leaf.weight; i++ {
			k := leaf.keys[i]
			if k <= prev {
				return stackerr.Newf("keys out of order: %v after %v", k, prev)
			}
			prev = k
		}
		leaf = leaf.next
	}
	return nil
}

// CheckRootNonDegenerate verifies the root is either an internal node or
// the sole leaf (next == nil).
func (t *Tree) CheckRootNonDegenerate() error {
	if t.root.isInternal() {
		return nil
	}
	if t.root.next == nil {
		return nil
	}
	return stackerr.New("root is a leaf with a sibling: tree is degenerate")
}

func checkKey(key float32) error {
	switch {
	case math.IsNaN(float64(key)):
		return stackerr.New("key must not be NaN")
	case math.IsInf(float64(key), 0):
		return stackerr.New("key must not be +/-Inf")
	}
	return nil
}
