package service

import (
	"regexp"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

// FilterField names a filter a removal directive can drop.
type FilterField string

const (
	FieldBrand   FilterField = "brand"
	FieldModel   FilterField = "model"
	FieldVersion FilterField = "version"
	FieldYear    FilterField = "year"
	FieldPrice   FilterField = "price"
	FieldKm      FilterField = "km"
	FieldAll     FilterField = "all"
)

var (
	removalRe   = regexp.MustCompile(`\bquita(?:r|me|le)?\s+(?:el\s+|la\s+|los\s+|las\s+)?(?:filtro\s+de\s+)?(marca|modelo|version|ano|anio|year|precio|max|min|km|kms|kilometraje|filtros|todo)\b`)
	newSearchRe = regexp.MustCompile(`\b(?:busca|busco|buscar|buscame|quiero|necesito|encuentra|encuentrame|muestrame|ensename|recomienda|recomiendame|otra busqueda|nueva busqueda|empezar de nuevo)\b`)
)

var removalFields = map[string]FilterField{
	"marca":       FieldBrand,
	"modelo":      FieldModel,
	"version":     FieldVersion,
	"ano":         FieldYear,
	"anio":        FieldYear,
	"year":        FieldYear,
	"precio":      FieldPrice,
	"max":         FieldPrice,
	"min":         FieldPrice,
	"km":          FieldKm,
	"kms":         FieldKm,
	"kilometraje": FieldKm,
	"filtros":     FieldAll,
	"todo":        FieldAll,
}

// Extraction is what one message contributes to the filter state, plus the
// signals the reset decision looks at.
type Extraction struct {
	Filters  model.FilterSet
	Removals []FilterField

	NewSearchWord   bool
	HasYear         bool
	BrandResolved   bool
	VersionResolved bool
}

// ParseRemovals returns the fields named by "quita ..." directives, in the
// order they appear.
func ParseRemovals(raw string) []FilterField {
	var out []FilterField
	for _, m := range removalRe.FindAllStringSubmatch(utils.Normalize(raw), -1) {
		if f, ok := removalFields[m[1]]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ExtractFilters reads filters from raw. Brand, model and version are
// resolved within scope; numeric bounds come straight from the text.
// Removal directives are stripped before resolution so "quita marca" never
// resolves to a brand.
func ExtractFilters(raw string, r *Resolver, scope model.FilterSet) Extraction {
	norm := utils.Normalize(raw)
	text := removalRe.ReplaceAllString(norm, " ")

	res := r.Resolve(text, scope)
	f := model.FilterSet{
		Brand:    res.Brand,
		Model:    res.Model,
		Version:  res.Version,
		FreeText: raw,
	}
	f.YearMin, f.YearMax = utils.ExtractYearBounds(text)
	f.PriceMin, f.PriceMax = utils.ExtractPriceBounds(text)
	if km, ok := utils.ExtractKmMax(text); ok {
		f.KmMax = &km
	}

	_, hasYear := utils.ExtractYear(text)
	return Extraction{
		Filters:         f,
		Removals:        ParseRemovals(norm),
		NewSearchWord:   newSearchRe.MatchString(text),
		HasYear:         hasYear,
		BrandResolved:   res.Brand != nil,
		VersionResolved: res.Version != nil,
	}
}

// MergeReason explains a merge decision.
type MergeReason string

const (
	ReasonNewSearchWord MergeReason = "new_search_word"
	ReasonYear          MergeReason = "year"
	ReasonBrand         MergeReason = "brand"
	ReasonVersion       MergeReason = "version"
	ReasonModelScope    MergeReason = "model_out_of_scope"
	ReasonRefine        MergeReason = "refine"
)

// MergeDecision says whether prior filters are discarded this turn.
type MergeDecision struct {
	Reset  bool
	Reason MergeReason
}

// resetRules is checked top to bottom; the first rule that applies resets.
var resetRules = []struct {
	reason  MergeReason
	applies func(Extraction) bool
}{
	{ReasonNewSearchWord, func(e Extraction) bool { return e.NewSearchWord }},
	{ReasonYear, func(e Extraction) bool { return e.HasYear }},
	{ReasonBrand, func(e Extraction) bool { return e.BrandResolved }},
	{ReasonVersion, func(e Extraction) bool { return e.VersionResolved }},
}

// DecideMerge picks between starting a new search and refining the prior one.
func DecideMerge(e Extraction) MergeDecision {
	for _, rule := range resetRules {
		if rule.applies(e) {
			return MergeDecision{Reset: true, Reason: rule.reason}
		}
	}
	return MergeDecision{Reason: ReasonRefine}
}

// PlanMerge extracts this turn's filters against prior. A refinement is
// re-extracted with prior's brand and model as the lock, so "sense" after
// "nissan versa" resolves within that scope. A model that only resolves
// outside the prior brand starts a new search instead.
func PlanMerge(raw string, r *Resolver, prior model.FilterSet) (Extraction, MergeDecision) {
	ext := ExtractFilters(raw, r, model.FilterSet{})
	d := DecideMerge(ext)
	if d.Reset || (prior.Brand == nil && prior.Model == nil) {
		return ext, d
	}

	scope := model.FilterSet{Brand: prior.Brand, Model: prior.Model}
	scoped := ExtractFilters(raw, r, scope)
	if ext.Filters.Model != nil && scoped.Filters.Model == nil && prior.Brand != nil {
		return ext, MergeDecision{Reset: true, Reason: ReasonModelScope}
	}
	return scoped, d
}

// MergeFilters overlays the non-nil fields of next on prior, or on an empty
// set when d resets.
func MergeFilters(prior, next model.FilterSet, d MergeDecision) model.FilterSet {
	out := model.FilterSet{}
	if !d.Reset {
		out = prior.Clone()
	}
	overlay := next.Clone()
	if overlay.Brand != nil {
		out.Brand = overlay.Brand
	}
	if overlay.Model != nil {
		out.Model = overlay.Model
	}
	if overlay.Version != nil {
		out.Version = overlay.Version
	}
	if overlay.YearMin != nil {
		out.YearMin = overlay.YearMin
	}
	if overlay.YearMax != nil {
		out.YearMax = overlay.YearMax
	}
	if overlay.PriceMin != nil {
		out.PriceMin = overlay.PriceMin
	}
	if overlay.PriceMax != nil {
		out.PriceMax = overlay.PriceMax
	}
	if overlay.KmMax != nil {
		out.KmMax = overlay.KmMax
	}
	out.FreeText = next.FreeText
	return out
}

// ApplyRemovals drops the named fields. It runs after the merge, so a
// removal beats a value given in the same message.
func ApplyRemovals(f model.FilterSet, removals []FilterField) model.FilterSet {
	out := f.Clone()
	out.FreeText = f.FreeText
	for _, r := range removals {
		switch r {
		case FieldBrand:
			out.Brand = nil
		case FieldModel:
			out.Model = nil
		case FieldVersion:
			out.Version = nil
		case FieldYear:
			out.YearMin, out.YearMax = nil, nil
		case FieldPrice:
			out.PriceMin, out.PriceMax = nil, nil
		case FieldKm:
			out.KmMax = nil
		case FieldAll:
			out = model.FilterSet{FreeText: f.FreeText}
		}
	}
	return out
}
