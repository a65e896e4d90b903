package ui

// rowCache is the terminal surface: it remembers which line is mounted at
// which index and renders each row at most once until invalidated
type rowCache struct {
	render func(index int) string
	rows   map[int]*row // key (line number) -> row
}

type row struct {
	index    int
	text     string
	rendered bool
}

func newRowCache(render func(index int) string) *rowCache {
	return &rowCache{
		render: render,
		rows:   make(map[int]*row),
	}
}

// Mount implements view.Surface
func (c *rowCache) Mount(key, index int) {
	if r, ok := c.rows[key]; ok {
		r.index = index
		r.rendered = false
		return
	}
	c.rows[key] = &row{index: index}
}

// Unmount implements view.Surface
func (c *rowCache) Unmount(key int) {
	delete(c.rows, key)
}

// Invalidate forces every mounted row to render again
func (c *rowCache) Invalidate() {
	for _, r := range c.rows {
		r.rendered = false
	}
}

// InvalidateKey forces one row to render again
func (c *rowCache) InvalidateKey(key int) {
	if r, ok := c.rows[key]; ok {
		r.rendered = false
	}
}

// Row returns the rendered row for key, if mounted
func (c *rowCache) Row(key int) (string, bool) {
	r, ok := c.rows[key]
	if !ok {
		return "", false
	}
	if !r.rendered {
		r.text = c.render(r.index)
		r.rendered = true
	}
	return r.text, true
}

// Len returns the number of mounted rows
func (c *rowCache) Len() int {
	return len(c.rows)
}
