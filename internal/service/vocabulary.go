package service

import (
	"sort"
	"strings"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

// looseKey is the comparison form of a catalog name or user phrase:
// normalized, with hyphens read as spaces ("X-Trail" and "x trail" meet).
func looseKey(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(utils.Normalize(s), "-", " ")), " ")
}

// nameSet maps loose keys to the first canonical spelling seen.
type nameSet map[string]string

func (s nameSet) add(name string) {
	k := looseKey(name)
	if k == "" {
		return
	}
	if _, ok := s[k]; !ok {
		s[k] = strings.TrimSpace(name)
	}
}

func (s nameSet) sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}

// Vocabulary is the set of canonical brands, models and versions of one
// catalog snapshot, indexed by scope.
type Vocabulary struct {
	brands          nameSet
	models          nameSet
	versions        nameSet
	modelsByBrand   map[string]nameSet
	versionsByBrand map[string]nameSet
	versionsByModel map[string]nameSet // model key, any brand
	versionsByPair  map[string]nameSet // brand key + "|" + model key
	terms           map[string]struct{}
}

// NewVocabulary indexes the names present in items.
func NewVocabulary(items []model.CatalogItem) *Vocabulary {
	v := &Vocabulary{
		brands:          nameSet{},
		models:          nameSet{},
		versions:        nameSet{},
		modelsByBrand:   map[string]nameSet{},
		versionsByBrand: map[string]nameSet{},
		versionsByModel: map[string]nameSet{},
		versionsByPair:  map[string]nameSet{},
		terms:           map[string]struct{}{},
	}
	for _, it := range items {
		bk, mk := looseKey(it.Brand), looseKey(it.Model)
		if bk == "" || mk == "" {
			continue
		}
		v.brands.add(it.Brand)
		v.models.add(it.Model)
		subset(v.modelsByBrand, bk).add(it.Model)

		for _, tok := range strings.Fields(bk + " " + mk) {
			if len(tok) >= 3 && !utils.IsNumeric(tok) {
				v.terms[tok] = struct{}{}
			}
		}

		if looseKey(it.Version) == "" {
			continue
		}
		v.versions.add(it.Version)
		subset(v.versionsByBrand, bk).add(it.Version)
		subset(v.versionsByModel, mk).add(it.Version)
		subset(v.versionsByPair, bk+"|"+mk).add(it.Version)
	}
	return v
}

func subset(m map[string]nameSet, key string) nameSet {
	s, ok := m[key]
	if !ok {
		s = nameSet{}
		m[key] = s
	}
	return s
}

// Brands returns every canonical brand.
func (v *Vocabulary) Brands() []string {
	return v.brands.sorted()
}

// Models returns the models of brand, or every model when brand is "".
func (v *Vocabulary) Models(brand string) []string {
	if brand == "" {
		return v.models.sorted()
	}
	return v.modelsByBrand[looseKey(brand)].sorted()
}

// Versions returns the versions in the narrowest scope the locks allow.
func (v *Vocabulary) Versions(brand, modelName string) []string {
	bk, mk := looseKey(brand), looseKey(modelName)
	switch {
	case bk != "" && mk != "":
		return v.versionsByPair[bk+"|"+mk].sorted()
	case mk != "":
		return v.versionsByModel[mk].sorted()
	case bk != "":
		return v.versionsByBrand[bk].sorted()
	default:
		return v.versions.sorted()
	}
}

// HasTerm reports whether tok is a word of some brand or model name.
func (v *Vocabulary) HasTerm(tok string) bool {
	if v == nil {
		return false
	}
	_, ok := v.terms[tok]
	return ok
}
