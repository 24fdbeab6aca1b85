package service

import (
	"sort"

	"kavak-agent/internal/model"
)

// Ranker orders filtered catalog items deterministically.
type Ranker struct{}

// NewRanker creates a new ranker
func NewRanker() *Ranker {
	return &Ranker{}
}

// RankResults sorts items in place and returns them. With a minimum year the
// order is closeness to that year, then km, then price. Without one it is km
// ascending, year descending, price ascending. The id breaks remaining ties.
func (r *Ranker) RankResults(items []model.CatalogItem, filters model.FilterSet) []model.CatalogItem {
	if filters.YearMin != nil {
		target := *filters.YearMin
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if da, db := absInt(a.Year-target), absInt(b.Year-target); da != db {
				return da < db
			}
			if a.Km != b.Km {
				return a.Km < b.Km
			}
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID < b.ID
		})
		return items
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Km != b.Km {
			return a.Km < b.Km
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID < b.ID
	})
	return items
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
