package view

// Range is an inclusive span of indices into the displayed sequence.
// An empty sequence is {0, -1}.
type Range struct {
	First int
	Last  int
}

// EmptyRange is the range of an empty sequence
var EmptyRange = Range{First: 0, Last: -1}

// Empty reports whether the range holds no index
func (r Range) Empty() bool {
	return r.Last < r.First
}

// Len returns the number of indices in the range
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains reports whether i lies within the range
func (r Range) Contains(i int) bool {
	return i >= r.First && i <= r.Last
}

// Window virtualizes a sequence of fixed-height items. It knows nothing
// about what the items are or how they are drawn: callers report the
// visible pixel span and get back the indices worth realizing.
type Window struct {
	itemHeight  int
	overscan    int
	maxRealized int // advisory, 0 means unlimited

	length int
	offset int // top of the visible span, in pixels
	height int // visible height, in pixels

	realized Range
}

// NewWindow creates a window for items of itemHeight pixels that realizes
// overscan extra items on each side of the visible range
func NewWindow(itemHeight, overscan int) *Window {
	return &Window{
		itemHeight: max(itemHeight, 1),
		overscan:   max(overscan, 0),
		realized:   EmptyRange,
	}
}

// SetMaxRealized caps how many items Update realizes. The visible range is
// always realized, so the cap may be exceeded by a tall viewport.
func (w *Window) SetMaxRealized(n int) {
	w.maxRealized = max(n, 0)
}

// SetLength sets the number of items in the displayed sequence. A shorter
// sequence clamps the scroll offset and the realized range.
func (w *Window) SetLength(n int) {
	w.length = max(n, 0)
	w.clampScroll()
	w.realized = w.clampRange(w.realized)
}

// Length returns the number of items
func (w *Window) Length() int {
	return w.length
}

// SetVisible reports the visible pixel span
func (w *Window) SetVisible(top, height int) {
	w.height = max(height, 0)
	w.offset = top
	w.clampScroll()
}

// SetHeight changes the visible height keeping the offset
func (w *Window) SetHeight(height int) {
	w.SetVisible(w.offset, height)
}

// Height returns the visible height in pixels
func (w *Window) Height() int {
	return w.height
}

// PageItems returns how many whole items fit in the visible span
func (w *Window) PageItems() int {
	return max(w.height/w.itemHeight, 1)
}

// ScrollBy moves the visible span by delta pixels
func (w *Window) ScrollBy(delta int) {
	w.offset += delta
	w.clampScroll()
}

// ScrollTo moves the top of the visible span to offset pixels
func (w *Window) ScrollTo(offset int) {
	w.offset = offset
	w.clampScroll()
}

// ScrollToItem brings item i to the top of the visible span
func (w *Window) ScrollToItem(i int) {
	w.ScrollTo(i * w.itemHeight)
}

// ScrollToEnd moves the visible span to the bottom of the sequence
func (w *Window) ScrollToEnd() {
	w.offset = w.maxOffset()
}

// ScrollDown scrolls down by n items
func (w *Window) ScrollDown(n int) {
	w.ScrollBy(n * w.itemHeight)
}

// ScrollUp scrolls up by n items
func (w *Window) ScrollUp(n int) {
	w.ScrollBy(-n * w.itemHeight)
}

// PageDown scrolls down by one page
func (w *Window) PageDown() {
	w.ScrollDown(max(w.PageItems()-1, 1))
}

// PageUp scrolls up by one page
func (w *Window) PageUp() {
	w.ScrollUp(max(w.PageItems()-1, 1))
}

// GotoTop scrolls to the beginning
func (w *Window) GotoTop() {
	w.offset = 0
}

// Offset returns the scroll offset in pixels
func (w *Window) Offset() int {
	return w.offset
}

// AtEnd reports whether the visible span touches the bottom
func (w *Window) AtEnd() bool {
	return w.offset >= w.maxOffset()
}

func (w *Window) maxOffset() int {
	return max(w.length*w.itemHeight-w.height, 0)
}

// clampScroll ensures scroll offset is within valid bounds
func (w *Window) clampScroll() {
	w.offset = min(w.offset, w.maxOffset())
	w.offset = max(w.offset, 0)
}

func (w *Window) clampRange(r Range) Range {
	if w.length == 0 || r.Empty() {
		return EmptyRange
	}
	r.First = max(r.First, 0)
	r.Last = min(r.Last, w.length-1)
	if r.Empty() {
		return EmptyRange
	}
	return r
}

// Visible returns the items intersecting the visible span
func (w *Window) Visible() Range {
	if w.length == 0 || w.height == 0 {
		return EmptyRange
	}
	first := w.offset / w.itemHeight
	last := (w.offset + w.height - 1) / w.itemHeight
	return w.clampRange(Range{First: first, Last: last})
}

// Realized returns the range computed by the last Update
func (w *Window) Realized() Range {
	return w.realized
}

// Update recomputes the realized range for the current visible span.
// The previous range is extended at whichever edge the visible range
// crossed and trimmed at edges left more than twice the overscan behind,
// so small scrolls only touch the edges.
func (w *Window) Update() Range {
	vis := w.Visible()
	if vis.Empty() {
		w.realized = EmptyRange
		return w.realized
	}

	r := w.realized
	if r.Empty() || vis.First > r.Last || vis.Last < r.First {
		r = Range{First: vis.First - w.overscan, Last: vis.Last + w.overscan}
	} else {
		if vis.First < r.First {
			r.First = vis.First - w.overscan
		}
		if vis.Last > r.Last {
			r.Last = vis.Last + w.overscan
		}
		if vis.First-r.First > 2*w.overscan {
			r.First = vis.First - w.overscan
		}
		if r.Last-vis.Last > 2*w.overscan {
			r.Last = vis.Last + w.overscan
		}
	}
	r = w.clampRange(r)

	if w.maxRealized > 0 && r.Len() > w.maxRealized {
		r = capAround(r, vis, w.maxRealized)
	}

	w.realized = r
	return r
}

// capAround shrinks r to at most n items while keeping vis, splitting the
// remaining budget between the two sides
func capAround(r, vis Range, n int) Range {
	extra := n - vis.Len()
	if extra <= 0 {
		return vis
	}
	before := min(vis.First-r.First, extra/2)
	after := min(r.Last-vis.Last, extra-before)
	before = min(vis.First-r.First, extra-after)
	return Range{First: vis.First - before, Last: vis.Last + after}
}

// PercentScrolled returns how far through the sequence we are
func (w *Window) PercentScrolled() float64 {
	if w.maxOffset() == 0 {
		return 100
	}
	return float64(w.offset) / float64(w.maxOffset()) * 100
}
