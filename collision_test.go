package collision

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hb(tag float32) *Hitbox { return &Hitbox{A1: tag} }

func collectAll(t *testing.T, tree *Tree, k0, k1 float32) []*Hitbox {
	t.Helper()
	var out []*Hitbox
	err := tree.RangeSearch(k0, k1, func(h *Hitbox) { out = append(out, h) })
	require.NoError(t, err)
	return out
}

func TestSequentialInsertAndPointRange(t *testing.T) {
	tree := NewTree()
	keys := []float32{1.0, 1.5, 2.0, 2.5, 3.0, 3.5}
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, hb(k)))
	}

	got := collectAll(t, tree, 1.5, 2.5)
	require.Len(t, got, 3)
	seen := map[float32]bool{}
	for _, h := range got {
		seen[h.A1] = true
	}
	assert.True(t, seen[1.5] && seen[2.0] && seen[2.5])
}

func TestRandomOrderInsertAndRange(t *testing.T) {
	keys := []float32{1.0, 1.5, 2.0, 2.5, 3.0, 3.5}
	shuffled := append([]float32(nil), keys...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	tree := NewTree()
	for _, k := range shuffled {
		require.NoError(t, tree.Insert(k, hb(k)))
	}
	assert.Len(t, collectAll(t, tree, 1.5, 2.5), 3)
}

func TestDuplicateKeyInsert(t *testing.T) {
	tree := NewTree()
	a, b, c := hb(100), hb(101), hb(102)
	d, e := hb(200), hb(201)
	require.NoError(t, tree.Insert(2.0, a))
	require.NoError(t, tree.Insert(2.0, b))
	require.NoError(t, tree.Insert(2.0, c))
	require.NoError(t, tree.Insert(1.5, d))
	require.NoError(t, tree.Insert(1.5, e))

	got := collectAll(t, tree, 1.0, 2.0)
	require.Len(t, got, 5)
	tags := map[float32]bool{}
	for _, h := range got {
		tags[h.A1] = true
	}
	for _, tag := range []float32{100, 101, 102, 200, 201} {
		assert.True(t, tags[tag], "missing tag %v", tag)
	}
}

func TestUniformDuplicateStress(t *testing.T) {
	tree := NewTree()
	const n = 103
	payloads := make([]*Hitbox, n)
	for i := 0; i < n; i++ {
		payloads[i] = hb(float32(1000 + i))
		require.NoError(t, tree.Insert(2.0, payloads[i]))
	}

	got := collectAll(t, tree, 1.5, 2.0)
	require.Len(t, got, n)
	tags := map[float32]int{}
	for _, h := range got {
		tags[h.A1]++
	}
	for _, p := range payloads {
		assert.Equal(t, 1, tags[p.A1])
	}
}

func TestReverseOrderBulkInsert(t *testing.T) {
	tree := NewTree()
	for i := 99; i >= 3; i-- {
		require.NoError(t, tree.Insert(float32(i), hb(float32(i))))
	}
	require.NoError(t, tree.CheckSorted(1.0))
	assert.Len(t, collectAll(t, tree, 1.0, 100.0), 97)
}

func TestEmptyTreeQuery(t *testing.T) {
	tree := NewTree()
	calls := 0
	err := tree.RangeSearch(1.5, 2.5, func(h *Hitbox) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestSingletonQuery(t *testing.T) {
	tree := NewTree()
	h := hb(7)
	require.NoError(t, tree.Insert(12.0, h))

	got := collectAll(t, tree, 11.0, 12.0)
	require.Len(t, got, 1)
	assert.Same(t, h, got[0])
	require.NoError(t, tree.CheckRootNonDegenerate())
}

func TestBallQueryIsRangeSearchOverMagnitude(t *testing.T) {
	tree := NewTree()
	for _, k := range []float32{0, 2, 4, 6, 8, 10} {
		require.NoError(t, tree.Insert(k, hb(k)))
	}
	got := collectAll(t, tree, 5-3, 5+3) // mag=5 rad=2 R=1
	ball := []*Hitbox{}
	require.NoError(t, tree.BallQuery(5, 2, 1, func(h *Hitbox) { ball = append(ball, h) }))
	assert.ElementsMatch(t, got, ball)
}

func TestInsertRejectsNaNPayload(t *testing.T) {
	tree := NewTree()
	err := tree.Insert(1.0, &Hitbox{A1: float32(math.NaN())})
	assert.ErrorIs(t, err, ErrReservedNaNPayload)
}

func TestRemoveCollapsesBucketToBarePointer(t *testing.T) {
	tree := NewTree()
	a, b := hb(1), hb(2)
	require.NoError(t, tree.Insert(3.0, a))
	require.NoError(t, tree.Insert(3.0, b))

	require.NoError(t, tree.Remove(3.0, a))
	got := collectAll(t, tree, 3.0, 3.0)
	require.Len(t, got, 1)
	assert.Same(t, b, got[0])
}

func TestRemoveSolePayloadIsNotImplemented(t *testing.T) {
	tree := NewTree()
	h := hb(1)
	require.NoError(t, tree.Insert(3.0, h))
	err := tree.Remove(3.0, h)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRemoveMissingKey(t *testing.T) {
	tree := NewTree()
	err := tree.Remove(3.0, hb(1))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRemoveMissingPayloadUnderExistingBucket(t *testing.T) {
	tree := NewTree()
	a, b := hb(1), hb(2)
	require.NoError(t, tree.Insert(3.0, a))
	require.NoError(t, tree.Insert(3.0, b))

	err := tree.Remove(3.0, hb(99))
	assert.ErrorIs(t, err, ErrPayloadNotFound)
}

func TestManyKeysWithSomeDuplicates(t *testing.T) {
	tree := NewTree()
	want := 0
	for i := 0; i < 500; i++ {
		key := float32(i % 97)
		require.NoError(t, tree.Insert(key, hb(float32(i))))
		want++
	}
	require.NoError(t, tree.CheckSorted(float32(-1e30)))
	require.NoError(t, tree.CheckRootNonDegenerate())
	got := collectAll(t, tree, -1e30, 1e30)
	assert.Len(t, got, want)
}

func ExampleTree_Insert() {
	tree := NewTree()
	_ = tree.Insert(1.0, hb(10))
	_ = tree.Insert(1.0, hb(20))
	n := 0
	_ = tree.Search(1.0, func(h *Hitbox) { n++ })
	fmt.Println(n)
	// Output: 2
}
