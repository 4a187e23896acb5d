package plans

import "sync/atomic"

// Source hands out the current catalog. Swapping replaces the whole catalog;
// holders of the previous one keep using it unchanged.
type Source struct {
	current atomic.Pointer[Catalog]
}

// NewSource returns a Source holding c.
func NewSource(c *Catalog) *Source {
	s := &Source{}
	s.current.Store(c)
	return s
}

// Catalog returns the current catalog.
func (s *Source) Catalog() *Catalog {
	return s.current.Load()
}

// Swap installs c as the current catalog and returns the previous one.
func (s *Source) Swap(c *Catalog) *Catalog {
	return s.current.Swap(c)
}
