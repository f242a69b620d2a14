package scanner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sadopc/gscandir/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_OnlyNewAndAll(t *testing.T) {
	b := newBuffer()
	b.push([]model.Result{model.Entry{Path: "a"}, model.Entry{Path: "b"}}, nil, nil)

	e, errs := b.results(false)
	assert.Equal(t, []string{"a", "b"}, pathsOf(e))
	assert.Empty(t, errs)

	b.push([]model.Result{model.Entry{Path: "c"}}, []model.ErrorEntry{{Path: "x", Message: "boom"}}, nil)
	e, errs = b.results(false)
	assert.Equal(t, []string{"c"}, pathsOf(e))
	assert.Len(t, errs, 1)

	e, _ = b.results(true)
	assert.Equal(t, []string{"a", "b", "c"}, pathsOf(e))
	// Full retrieval is idempotent.
	e, _ = b.results(true)
	assert.Len(t, e, 3)
	e, _ = b.results(false)
	assert.Empty(t, e)
}

func TestBuffer_ReturnedSlicesAreCopies(t *testing.T) {
	b := newBuffer()
	b.push([]model.Result{model.Entry{Path: "a"}}, nil, nil)
	e, _ := b.results(true)
	e[0] = model.Entry{Path: "mutated"}
	e, _ = b.results(true)
	assert.Equal(t, "a", e[0].GetPath())
}

func TestBuffer_ConcurrentPushAndDrain(t *testing.T) {
	b := newBuffer()
	const writers, per = 4, 500

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range per {
				b.push([]model.Result{model.Entry{Path: fmt.Sprintf("%d/%d", w, i)}}, nil, nil)
			}
		}()
	}

	seen := map[string]bool{}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	drain := func() {
		for _, r := range b.entriesOnly(false) {
			require.False(t, seen[r.GetPath()], "duplicate %s", r.GetPath())
			seen[r.GetPath()] = true
		}
	}
loop:
	for {
		select {
		case <-done:
			break loop
		default:
			drain()
		}
	}
	drain()
	assert.Len(t, seen, writers*per)
	n, _, _ := b.counts(false)
	assert.Equal(t, writers*per, n)
}

func TestBuffer_Reset(t *testing.T) {
	b := newBuffer()
	b.push([]model.Result{model.Entry{Path: "a"}}, []model.ErrorEntry{{Path: "x"}}, []model.DirToc{{Path: "."}})
	e, errs, tocs := b.counts(true)
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{e, errs, tocs})

	b.reset()
	e, errs, tocs = b.counts(false)
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{e, errs, tocs})
	all, _, _ := b.snapshot()
	assert.Empty(t, all)
}
