package service

import (
	"strings"
	"sync/atomic"

	"kavak-agent/internal/metrics"
	"kavak-agent/internal/model"
)

// Catalog is an immutable snapshot of the car inventory.
type Catalog struct {
	items  []model.CatalogItem
	byID   map[string]int
	vocab  *Vocabulary
	ranker *Ranker
}

// NewCatalog builds a snapshot from items. Invalid rows are dropped, a
// missing location becomes "Online" and the first row wins on duplicate ids.
func NewCatalog(items []model.CatalogItem) *Catalog {
	c := &Catalog{
		items:  make([]model.CatalogItem, 0, len(items)),
		byID:   make(map[string]int, len(items)),
		ranker: NewRanker(),
	}
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		it.Brand = strings.TrimSpace(it.Brand)
		it.Model = strings.TrimSpace(it.Model)
		it.Version = strings.TrimSpace(it.Version)
		if strings.TrimSpace(it.Location) == "" {
			it.Location = model.DefaultLocation
		}
		if !it.Valid() {
			continue
		}
		if _, dup := c.byID[it.ID]; dup {
			continue
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	c.vocab = NewVocabulary(c.items)
	return c
}

// Len returns the number of items in the snapshot.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Vocabulary returns the names indexed from this snapshot.
func (c *Catalog) Vocabulary() *Vocabulary {
	return c.vocab
}

// Get looks an item up by id.
func (c *Catalog) Get(id string) (model.CatalogItem, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return model.CatalogItem{}, false
	}
	return c.items[i], true
}

// Search returns every item matching filters, ranked. The result is a fresh
// slice the caller may keep.
func (c *Catalog) Search(filters model.FilterSet) []model.CatalogItem {
	rows := make([]model.CatalogItem, len(c.items))
	copy(rows, c.items)

	// version → brand → model → numeric; stop as soon as nothing is left
	steps := []func(model.CatalogItem) bool{}
	if filters.Version != nil {
		key := looseKey(*filters.Version)
		steps = append(steps, func(it model.CatalogItem) bool { return looseKey(it.Version) == key })
	}
	if filters.Brand != nil {
		key := looseKey(*filters.Brand)
		steps = append(steps, func(it model.CatalogItem) bool { return looseKey(it.Brand) == key })
	}
	if filters.Model != nil {
		key := looseKey(*filters.Model)
		steps = append(steps, func(it model.CatalogItem) bool { return looseKey(it.Model) == key })
	}
	steps = append(steps, numericFilter(filters))

	for _, keep := range steps {
		rows = filterItems(rows, keep)
		if len(rows) == 0 {
			return rows
		}
	}
	return c.ranker.RankResults(rows, filters)
}

// Count returns the number of items matching filters.
func (c *Catalog) Count(filters model.FilterSet) int {
	return len(c.Search(filters))
}

// Page returns at most limit ranked items starting at offset. An offset at
// or past the end yields an empty page.
func (c *Catalog) Page(filters model.FilterSet, offset, limit int) []model.CatalogItem {
	return Window(c.Search(filters), offset, limit)
}

// Window slices ranked results the way Page does.
func Window(rows []model.CatalogItem, offset, limit int) []model.CatalogItem {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(rows) {
		return []model.CatalogItem{}
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end]
}

func numericFilter(f model.FilterSet) func(model.CatalogItem) bool {
	return func(it model.CatalogItem) bool {
		if f.PriceMin != nil && it.Price < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && it.Price > *f.PriceMax {
			return false
		}
		if f.YearMin != nil && it.Year < *f.YearMin {
			return false
		}
		if f.YearMax != nil && it.Year > *f.YearMax {
			return false
		}
		if f.KmMax != nil && it.Km > *f.KmMax {
			return false
		}
		return true
	}
}

func filterItems(rows []model.CatalogItem, keep func(model.CatalogItem) bool) []model.CatalogItem {
	out := rows[:0]
	for _, it := range rows {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// CatalogHolder publishes the active snapshot. Readers pin one snapshot per
// turn; Swap replaces it atomically.
type CatalogHolder struct {
	current atomic.Pointer[Catalog]
}

func NewCatalogHolder(initial *Catalog) *CatalogHolder {
	h := &CatalogHolder{}
	if initial == nil {
		initial = NewCatalog(nil)
	}
	h.Swap(initial)
	return h
}

// Current returns the active snapshot.
func (h *CatalogHolder) Current() *Catalog {
	return h.current.Load()
}

// Swap installs c and returns the previous snapshot.
func (h *CatalogHolder) Swap(c *Catalog) *Catalog {
	if c == nil {
		c = NewCatalog(nil)
	}
	prev := h.current.Swap(c)
	metrics.CatalogItems.Set(float64(c.Len()))
	return prev
}
