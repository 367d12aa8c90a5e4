package event

import (
	"testing"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/stretchr/testify/assert"
)

type ping struct{}
type pong struct{}

func TestTableOrdering(t *testing.T) {
	tb := NewTable[*[]string]()
	rec := func(tag string) Callback[*[]string] {
		return func(out *[]string, _ ecs.Handle, _ any) { *out = append(*out, tag) }
	}

	tb.Add(5, TypeOf[ping](), rec("5a"))
	tb.Add(2, TypeOf[ping](), rec("2a"))
	tb.Add(5, TypeOf[pong](), rec("5-pong"))
	tb.Add(5, TypeOf[ping](), rec("5b"))

	var got []string
	for _, d := range tb.Matching(TypeOf[ping]()) {
		d.Fn(&got, d.Handle, ping{})
	}
	assert.Equal(t, []string{"5a", "5b", "2a"}, got, "handles in first-registration order")

	assert.Len(t, tb.MatchingOn(5, TypeOf[pong]()), 1)
	assert.Empty(t, tb.MatchingOn(2, TypeOf[pong]()))
	assert.Equal(t, 3, tb.Count(5))
	assert.Equal(t, 4, tb.Len())
}

func TestTableDropAndSnapshot(t *testing.T) {
	tb := NewTable[int]()
	tb.Add(1, TypeOf[ping](), func(int, ecs.Handle, any) {})
	tb.Add(2, TypeOf[ping](), func(int, ecs.Handle, any) {})

	snap := tb.Matching(TypeOf[ping]())
	assert.Equal(t, 1, tb.Drop(1))
	assert.Equal(t, 0, tb.Drop(1))
	assert.Len(t, snap, 2, "snapshots are unaffected by later mutation")
	assert.Len(t, tb.Matching(TypeOf[ping]()), 1)
	assert.Equal(t, 1, tb.Len())

	tb.Add(1, TypeOf[ping](), func(int, ecs.Handle, any) {})
	hs := []ecs.Handle{}
	for _, d := range tb.Matching(TypeOf[ping]()) {
		hs = append(hs, d.Handle)
	}
	assert.Equal(t, []ecs.Handle{2, 1}, hs)
}

func TestTypeOfInterface(t *testing.T) {
	assert.Equal(t, "error", TypeOf[error]().String())
	assert.NotEqual(t, TypeOf[ping](), TypeOf[pong]())
}
