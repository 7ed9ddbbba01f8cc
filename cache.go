package inkwell

import (
	"sync"
	"time"
)

// TaxonomyCache is an in-memory TTL cache of the sidebar data: the
// categories and tags that have at least one post, with counts. It is
// invalidated whenever a post or taxonomy record is written.
type TaxonomyCache struct {
	mu         sync.RWMutex
	categories []Category
	tags       []Tag
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewTaxonomyCache creates a TaxonomyCache backed by the given Store.
func NewTaxonomyCache(s *Store, ttl time.Duration) *TaxonomyCache {
	return &TaxonomyCache{store: s, ttl: ttl}
}

func (c *TaxonomyCache) valid() bool {
	return c.categories != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TaxonomyCache) Invalidate() {
	c.mu.Lock()
	c.categories = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *TaxonomyCache) load() error {
	if c.valid() {
		return nil
	}
	cats, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	c.categories = withPosts(cats)
	c.tags = taggedPosts(tags)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached data after ensuring freshness. A read
// lock is tried first; the write lock is taken only for a reload.
func (c *TaxonomyCache) ensureLoaded() ([]Category, []Tag, error) {
	c.mu.RLock()
	if c.valid() {
		cats, tags := c.categories, c.tags
		c.mu.RUnlock()
		return cats, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.categories, c.tags, nil
}

// Categories returns the categories that have posts, with counts.
func (c *TaxonomyCache) Categories() ([]Category, error) {
	cats, _, err := c.ensureLoaded()
	return cats, err
}

// Tags returns the tags that have posts, with counts.
func (c *TaxonomyCache) Tags() ([]Tag, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

func withPosts(cats []Category) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.PostCount > 0 {
			out = append(out, c)
		}
	}
	return out
}

func taggedPosts(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.PostCount > 0 {
			out = append(out, t)
		}
	}
	return out
}
