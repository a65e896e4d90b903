package view

import (
	"maps"
	"slices"
)

// Surface is where realized items are drawn. Mount is called when an item
// appears or moves to a new index; Unmount when it leaves the window.
// Items are identified by key, so state tied to a key survives re-renders.
type Surface interface {
	Mount(key, index int)
	Unmount(key int)
}

// KeyFunc maps an index of the displayed sequence to a stable key
type KeyFunc func(index int) int

// Reconciler keeps a Surface in step with the realized range
type Reconciler struct {
	surface Surface
	key     KeyFunc
	mounted map[int]int // key -> index
}

// NewReconciler creates a reconciler. A nil key function keys by index.
func NewReconciler(surface Surface, key KeyFunc) *Reconciler {
	if key == nil {
		key = func(i int) int { return i }
	}
	return &Reconciler{
		surface: surface,
		key:     key,
		mounted: make(map[int]int),
	}
}

// SetKeyFunc replaces the key function. The next Reconcile remounts any
// item whose key or index changed.
func (r *Reconciler) SetKeyFunc(key KeyFunc) {
	if key != nil {
		r.key = key
	}
}

// Reconcile mounts what entered the realized range and unmounts what left.
// Items that kept both key and index are left alone.
func (r *Reconciler) Reconcile(realized Range) {
	next := make(map[int]int, realized.Len())
	for i := realized.First; i <= realized.Last; i++ {
		next[r.key(i)] = i
	}

	for _, key := range slices.Sorted(maps.Keys(r.mounted)) {
		if _, ok := next[key]; !ok {
			r.surface.Unmount(key)
			delete(r.mounted, key)
		}
	}

	for i := realized.First; i <= realized.Last; i++ {
		key := r.key(i)
		if prev, ok := r.mounted[key]; ok && prev == i {
			continue
		}
		r.surface.Mount(key, i)
		r.mounted[key] = i
	}
}

// Reset unmounts everything
func (r *Reconciler) Reset() {
	r.Reconcile(EmptyRange)
}

// Mounted returns the number of mounted items
func (r *Reconciler) Mounted() int {
	return len(r.mounted)
}

// IndexOf returns the index a key is mounted at
func (r *Reconciler) IndexOf(key int) (int, bool) {
	i, ok := r.mounted[key]
	return i, ok
}
