package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/logview/internal/index"
)

func TestWindowVisible(t *testing.T) {
	tests := []struct {
		name       string
		itemHeight int
		length     int
		top        int
		height     int
		want       Range
	}{
		{"empty sequence", 1, 0, 0, 10, EmptyRange},
		{"zero height", 1, 10, 0, 0, EmptyRange},
		{"short sequence", 1, 3, 0, 10, Range{0, 2}},
		{"middle", 1, 100, 20, 10, Range{20, 29}},
		{"clamped to end", 1, 100, 500, 10, Range{90, 99}},
		{"tall items", 20, 100, 30, 50, Range{1, 3}},
		{"negative top", 1, 100, -5, 10, Range{0, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.itemHeight, 0)
			w.SetLength(tt.length)
			w.SetVisible(tt.top, tt.height)
			require.Equal(t, tt.want, w.Visible())
		})
	}
}

func TestWindowScroll(t *testing.T) {
	w := NewWindow(1, 0)
	w.SetLength(50)
	w.SetVisible(0, 10)

	w.ScrollDown(5)
	require.Equal(t, 5, w.Offset())
	w.ScrollUp(20)
	require.Equal(t, 0, w.Offset())

	w.PageDown()
	require.Equal(t, 9, w.Offset())
	w.PageUp()
	require.Equal(t, 0, w.Offset())

	w.ScrollToEnd()
	require.True(t, w.AtEnd())
	require.Equal(t, Range{40, 49}, w.Visible())
	require.Equal(t, 100.0, w.PercentScrolled())

	w.GotoTop()
	require.False(t, w.AtEnd())
	require.Zero(t, w.PercentScrolled())

	w.ScrollToItem(45)
	require.Equal(t, 40, w.Offset())
}

func TestWindowUpdateHysteresis(t *testing.T) {
	w := NewWindow(1, 2)
	w.SetLength(100)
	w.SetVisible(0, 5)

	require.Equal(t, Range{0, 6}, w.Update())

	w.ScrollTo(1)
	require.Equal(t, Range{0, 6}, w.Update(), "still inside the realized range")

	w.ScrollTo(3)
	require.Equal(t, Range{0, 9}, w.Update(), "grows at the bottom edge only")

	w.ScrollTo(5)
	require.Equal(t, Range{3, 9}, w.Update(), "trims the top edge past twice the overscan")

	w.ScrollTo(60)
	require.Equal(t, Range{58, 66}, w.Update(), "a jump recomputes around the visible range")

	w.ScrollTo(57)
	require.Equal(t, Range{55, 63}, w.Update(), "grows at the top edge and trims the bottom")
}

func TestWindowClampsWhenSequenceShrinks(t *testing.T) {
	w := NewWindow(1, 5)
	w.SetLength(100)
	w.SetVisible(80, 10)
	before := w.Update()
	require.Equal(t, 94, before.Last)

	for _, n := range []int{50, 7, 1, 0} {
		w.SetLength(n)
		r := w.Update()
		require.Less(t, r.Last, n, "length %d", n)
		require.Less(t, w.Realized().Last, n)
		vis := w.Visible()
		require.Less(t, vis.Last, n)
		if n > 0 {
			require.LessOrEqual(t, 0, vis.First)
			require.LessOrEqual(t, vis.First, vis.Last)
		}
	}
	require.True(t, w.Realized().Empty())

	// SetLength alone keeps the stale range within bounds
	w.SetLength(100)
	w.SetVisible(90, 10)
	w.Update()
	w.SetLength(3)
	require.Less(t, w.Realized().Last, 3)
}

func TestWindowMaxRealized(t *testing.T) {
	w := NewWindow(1, 20)
	w.SetMaxRealized(16)
	w.SetLength(1000)
	w.SetVisible(500, 10)

	r := w.Update()
	require.Equal(t, 16, r.Len())
	require.True(t, r.Contains(500))
	require.True(t, r.Contains(509))

	w.SetMaxRealized(4)
	r = w.Update()
	require.Equal(t, Range{500, 509}, r, "never below the visible range")
}

type recordingSurface struct {
	mounted map[int]int
	log     []string
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{mounted: make(map[int]int)}
}

func (s *recordingSurface) Mount(key, index int) {
	s.mounted[key] = index
	s.log = append(s.log, fmt.Sprintf("mount %d@%d", key, index))
}

func (s *recordingSurface) Unmount(key int) {
	delete(s.mounted, key)
	s.log = append(s.log, fmt.Sprintf("unmount %d", key))
}

func TestReconcilerMountsAndUnmounts(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, func(i int) int { return i + 1 })

	r.Reconcile(Range{0, 2})
	require.Equal(t, []string{"mount 1@0", "mount 2@1", "mount 3@2"}, s.log)

	s.log = nil
	r.Reconcile(Range{1, 3})
	require.Equal(t, []string{"unmount 1", "mount 4@3"}, s.log)
	require.Equal(t, 3, r.Mounted())

	s.log = nil
	r.Reconcile(Range{1, 3})
	require.Empty(t, s.log, "unchanged range touches nothing")

	r.Reset()
	require.Zero(t, r.Mounted())
	require.Empty(t, s.mounted)
}

func TestReconcilerKeepsIdentityAcrossProjections(t *testing.T) {
	s := newRecordingSurface()
	// Displayed sequence is lines 1..5
	all := []int{1, 2, 3, 4, 5}
	r := NewReconciler(s, func(i int) int { return all[i] })
	r.Reconcile(Range{0, 4})

	// A query narrows the sequence to lines 2 and 4
	matches := []int{2, 4}
	r.SetKeyFunc(func(i int) int { return matches[i] })
	s.log = nil
	r.Reconcile(Range{0, 1})

	require.Equal(t, []string{"unmount 1", "unmount 3", "unmount 5", "mount 2@0", "mount 4@1"}, s.log)
	idx, ok := r.IndexOf(4)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestFollowerThreeAppends(t *testing.T) {
	store := index.NewStore()
	w := NewWindow(1, 0)
	w.SetVisible(0, 2)
	f := NewFollower(true, w)

	for _, msg := range []string{"x", "y", "z"} {
		doc, change := store.Append("\n" + msg)
		w.SetLength(doc.Len())
		require.True(t, f.DocumentChanged(change))
		require.True(t, w.AtEnd())
		require.Equal(t, doc.Len()-1, w.Visible().Last)
	}
}

func TestFollowerIsSticky(t *testing.T) {
	w := NewWindow(1, 0)
	w.SetLength(10)
	w.SetVisible(0, 3)
	f := NewFollower(true, w)

	w.GotoTop()
	require.Equal(t, Following, f.State(), "manual scrolling does not cancel follow")

	w.SetLength(11)
	f.DocumentChanged(index.ChangeGrew)
	require.True(t, w.AtEnd())

	f.SetEnabled(false)
	w.GotoTop()
	w.SetLength(12)
	require.False(t, f.DocumentChanged(index.ChangeGrew))
	require.Zero(t, w.Offset())
	require.Equal(t, "not following", f.State().String())
}

func TestFollowerStartsDisabled(t *testing.T) {
	f := NewFollower(false, nil)
	require.False(t, f.Following())
	f.SetEnabled(true)
	require.False(t, f.DocumentChanged(index.ChangeReset), "no target to scroll")
}
