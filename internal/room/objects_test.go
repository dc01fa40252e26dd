package room

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectInputAndRotation(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2, nil)

	require.NoError(t, send(t, r, ids[0], EventObjectInput, map[string]interface{}{"objectId": 7, "x": 100, "y": 200}))
	// Last write wins, whoever is dragging.
	require.NoError(t, send(t, r, ids[0], EventObjectDepth, map[string]int{"objectId": 7}))
	require.NoError(t, send(t, r, ids[1], EventObjectInput, map[string]interface{}{"objectId": 7, "x": -5, "y": 6}))
	require.NoError(t, send(t, r, ids[1], EventObjectRotation, map[string]interface{}{"objectId": 7, "angle": 33.5}))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	obj, _ := r.Object(7)
	assert.Equal(t, -5.0, obj.X)
	assert.Equal(t, 6.0, obj.Y)
	assert.Equal(t, 33.5, obj.Angle)
}

func TestDepthStrictlyIncreasing(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2, nil)

	seen := map[int]bool{}
	last := 0
	for i := 0; i < 200; i++ {
		objectID := 1 + i%53
		require.NoError(t, send(t, r, ids[i%2], EventObjectDepth, map[string]int{"objectId": objectID}))
		r.Mu.Lock()
		obj, _ := r.Object(objectID)
		d := obj.Depth
		r.Mu.Unlock()
		assert.Greater(t, d, last)
		assert.False(t, seen[d])
		seen[d] = true
		last = d
	}

	// A stale id does not consume a depth value.
	r.Mu.Lock()
	before := r.Depth()
	r.Mu.Unlock()
	assert.ErrorIs(t, send(t, r, ids[0], EventObjectDepth, map[string]int{"objectId": 9999}), ErrStaleReference)
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, before, r.Depth())
}

func TestDragStartAndRelease(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1, nil)
	p := ids[0]

	require.NoError(t, send(t, r, p, EventObjectDepth, map[string]int{"objectId": 1}))
	require.NoError(t, send(t, r, p, EventObjectDepth, map[string]int{"objectId": 2}))

	r.Mu.Lock()
	pl, _ := r.Player(p)
	assert.Equal(t, 2, pl.Dragging)
	assert.Equal(t, models.OnTable, r.objects[1].Loc.State, "starting a new drag ends the old one")
	assert.Equal(t, models.Dragging, r.objects[2].Loc.State)
	assert.Contains(t, r.ObjectSnapshot(), 2, "dragged objects stay in the table snapshot")
	r.Mu.Unlock()

	assert.ErrorIs(t, send(t, r, p, EventObjectRelease, map[string]int{"objectId": 1}), ErrStaleReference)
	require.NoError(t, send(t, r, p, EventObjectRelease, map[string]int{"objectId": 2}))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	pl, _ = r.Player(p)
	assert.Equal(t, models.NoDrag, pl.Dragging)
	assert.Equal(t, models.OnTable, r.objects[2].Loc.State)
}

func TestFlip(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2, nil)
	p := ids[0]

	require.NoError(t, send(t, r, p, EventObjectFlip, map[string]int{"objectId": 4}))
	r.Mu.Lock()
	assert.True(t, r.objects[4].IsFaceUp[0])
	require.NoError(t, r.MergeStacks(5, 4))
	r.Mu.Unlock()

	// Only the top sprite of a table stack turns.
	require.NoError(t, send(t, r, p, EventObjectFlip, map[string]int{"objectId": 4}))
	r.Mu.Lock()
	assert.Equal(t, []bool{true, true}, r.objects[4].IsFaceUp)
	require.NoError(t, r.MoveToHand(p, 4, p, 0))
	r.Mu.Unlock()

	// In a hand the whole object turns, and only when it sits in the named hand.
	assert.ErrorIs(t, send(t, r, p, EventObjectFlip, map[string]interface{}{"objectId": 4, "playerId": ids[1]}), ErrStaleReference)
	require.NoError(t, send(t, r, p, EventObjectFlip, map[string]interface{}{"objectId": 4, "playerId": p}))
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, []bool{false, false}, r.objects[4].IsFaceUp)
	assert.ErrorIs(t, r.FlipObject(4), ErrStaleReference, "table flip does not reach into hands")
}

func TestMergeStacks(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1, nil)
	p := ids[0]

	require.NoError(t, send(t, r, p, EventObjectDepth, map[string]int{"objectId": 10}))
	require.NoError(t, send(t, r, p, EventMergeStacks, map[string]int{"topStack": 10, "bottomStack": 11}))
	require.NoError(t, send(t, r, p, EventMergeStacks, map[string]int{"topStack": 12, "bottomStack": 11}))

	r.Mu.Lock()
	defer r.Mu.Unlock()

	bottom, ok := r.Object(11)
	require.True(t, ok)
	assert.Equal(t, []int{11, 10, 12}, bottom.Items)
	assert.Len(t, bottom.IsFaceUp, 3)
	_, ok = r.Object(10)
	assert.False(t, ok, "merged id is retired")
	pl, _ := r.Player(p)
	assert.Equal(t, models.NoDrag, pl.Dragging, "drag of a retired object is cleared")

	// Retired ids stay retired.
	assert.ErrorIs(t, r.MergeStacks(10, 11), ErrStaleReference)
	assert.ErrorIs(t, r.MoveObject(10, 0, 0), ErrStaleReference)
	assert.ErrorIs(t, r.MergeStacks(11, 11), ErrStaleReference)

	require.NoError(t, r.MoveToHand(p, 13, p, 0))
	assert.ErrorIs(t, r.MergeStacks(13, 11), ErrStaleReference, "hand objects cannot be merged")
	assert.Len(t, r.objects, 51)
}

func TestMergeMultiSpriteStacks(t *testing.T) {
	r, _, _ := setupTestRoom(t, 1, nil)
	r.Mu.Lock()
	defer r.Mu.Unlock()

	// B = [1 2], A = [3 4 5] with 4 face up.
	require.NoError(t, r.MergeStacks(2, 1))
	require.NoError(t, r.MergeStacks(4, 3))
	require.NoError(t, r.MergeStacks(5, 3))
	r.objects[3].IsFaceUp[1] = true

	require.NoError(t, r.MergeStacks(3, 1))

	b, ok := r.Object(1)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Items)
	assert.Equal(t, []bool{false, false, false, true, false}, b.IsFaceUp)
	assert.Equal(t, 4, b.Top())

	for _, retired := range []int{2, 3, 4, 5} {
		_, ok := r.Object(retired)
		assert.False(t, ok, "id %d is retired", retired)
	}
	assert.ErrorIs(t, r.MergeStacks(3, 1), ErrStaleReference)
	assert.ErrorIs(t, r.ShuffleStack(3), ErrStaleReference)
	assert.Len(t, r.objects, 49)
}

func TestDrawTopSprite(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1, nil)
	p := ids[0]

	r.Mu.Lock()
	require.NoError(t, r.MergeStacks(2, 1))
	require.NoError(t, r.MergeStacks(3, 1))
	r.objects[1].IsFaceUp[2] = true
	require.NoError(t, r.MoveObject(1, 40, 50))
	depth := r.Depth()
	r.Mu.Unlock()

	require.NoError(t, send(t, r, p, EventDrawTopSprite, map[string]int{"bottomStack": 1}))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	stack, _ := r.Object(1)
	assert.Equal(t, []int{1, 2}, stack.Items)
	assert.Equal(t, []bool{false, false}, stack.IsFaceUp)

	drawn, ok := r.Object(models.SpriteJoker + 1)
	require.True(t, ok, "new object takes the next unused id")
	assert.Equal(t, []int{3}, drawn.Items)
	assert.Equal(t, []bool{true}, drawn.IsFaceUp)
	assert.Equal(t, 40.0, drawn.X)
	assert.Equal(t, 50.0, drawn.Y)
	assert.Equal(t, depth+1, drawn.Depth)

	_, err := r.DrawTopSprite(5)
	assert.ErrorIs(t, err, ErrStaleReference, "a single card is not a stack")
	_, err = r.DrawTopSprite(2)
	assert.ErrorIs(t, err, ErrStaleReference)
}

func TestShuffleIsPermutation(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1, nil)
	r.SetRand(rand.New(rand.NewSource(42)))

	r.Mu.Lock()
	for id := 2; id <= 20; id++ {
		require.NoError(t, r.MergeStacks(id, 1))
	}
	for i := range r.objects[1].IsFaceUp {
		r.objects[1].IsFaceUp[i] = r.objects[1].Items[i]%2 == 0
	}
	r.Mu.Unlock()

	require.NoError(t, send(t, r, ids[0], EventShuffleStack, map[string]int{"objectId": 1}))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	obj := r.objects[1]
	got := append([]int(nil), obj.Items...)
	sort.Ints(got)
	want := make([]int, 20)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)
	for i, sprite := range obj.Items {
		assert.Equal(t, sprite%2 == 0, obj.IsFaceUp[i], "face flag travels with its sprite")
	}
}

func TestShuffleIsUniform(t *testing.T) {
	r, _, _ := setupTestRoom(t, 0, nil)
	r.SetRand(rand.New(rand.NewSource(1)))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	require.NoError(t, r.MergeStacks(2, 1))
	require.NoError(t, r.MergeStacks(3, 1))

	const trials = 60000
	counts := map[[3]int]int{}
	for i := 0; i < trials; i++ {
		require.NoError(t, r.ShuffleStack(1))
		items := r.objects[1].Items
		counts[[3]int{items[0], items[1], items[2]}]++
	}

	require.Len(t, counts, 6)
	expected := float64(trials) / 6
	for perm, n := range counts {
		assert.InDelta(t, expected, float64(n), expected*0.05, "permutation %v", perm)
	}
}
