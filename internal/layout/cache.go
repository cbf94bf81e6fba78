package layout

import "kernelabi/internal/ir"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byType map[*ir.Type]*cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[*ir.Type]*cacheEntry, 64)}
}

func (c *cache) get(t *ir.Type) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byType[t]
	return e, ok
}

func (c *cache) put(t *ir.Type, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byType, t)
		return
	}
	c.byType[t] = e
}
