package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/model"
)

func TestExtractFilters(t *testing.T) {
	r := fixtureResolver()

	ext := ExtractFilters("Busco Nissan Versa 2020 menos de 300 mil", r, model.FilterSet{})
	require.NotNil(t, ext.Filters.Brand)
	require.NotNil(t, ext.Filters.Model)
	assert.Equal(t, "Nissan", *ext.Filters.Brand)
	assert.Equal(t, "Versa", *ext.Filters.Model)
	assert.Nil(t, ext.Filters.Version)
	assert.Equal(t, model.Int(2020), ext.Filters.YearMin)
	assert.Nil(t, ext.Filters.YearMax)
	assert.Equal(t, model.Float(300000), ext.Filters.PriceMax)
	assert.True(t, ext.NewSearchWord)
	assert.True(t, ext.HasYear)
	assert.True(t, ext.BrandResolved)
	assert.False(t, ext.VersionResolved)

	used := ExtractFilters("un usado 2018-2020", r, model.FilterSet{})
	assert.Equal(t, model.Int(2018), used.Filters.YearMin)
	assert.Equal(t, model.Int(2020), used.Filters.YearMax)
	assert.Equal(t, model.Int(100000), used.Filters.KmMax)
	assert.Nil(t, used.Filters.PriceMax)

	km := ExtractFilters("versa con menos de 2000 km", r, model.FilterSet{})
	assert.Equal(t, model.Int(2000), km.Filters.KmMax)
	assert.Nil(t, km.Filters.YearMin)
	assert.Nil(t, km.Filters.YearMax)
	assert.False(t, km.HasYear)

	removal := ExtractFilters("quita marca", r, model.FilterSet{})
	assert.Nil(t, removal.Filters.Brand)
	assert.Equal(t, []FilterField{FieldBrand}, removal.Removals)
}

func TestParseRemovals(t *testing.T) {
	tests := []struct {
		in   string
		want []FilterField
	}{
		{"quita marca", []FilterField{FieldBrand}},
		{"quita el precio", []FilterField{FieldPrice}},
		{"quitar año y quita km", []FilterField{FieldYear, FieldKm}},
		{"quita la versión", []FilterField{FieldVersion}},
		{"quita filtros", []FilterField{FieldAll}},
		{"quita todo", []FilterField{FieldAll}},
		{"nissan versa", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRemovals(tt.in))
		})
	}
}

func TestDecideMerge(t *testing.T) {
	tests := []struct {
		name string
		ext  Extraction
		want MergeDecision
	}{
		{"nothing refines", Extraction{}, MergeDecision{Reason: ReasonRefine}},
		{"search word", Extraction{NewSearchWord: true, HasYear: true}, MergeDecision{Reset: true, Reason: ReasonNewSearchWord}},
		{"year", Extraction{HasYear: true, BrandResolved: true}, MergeDecision{Reset: true, Reason: ReasonYear}},
		{"brand", Extraction{BrandResolved: true, VersionResolved: true}, MergeDecision{Reset: true, Reason: ReasonBrand}},
		{"version", Extraction{VersionResolved: true}, MergeDecision{Reset: true, Reason: ReasonVersion}},
		{"removal alone refines", Extraction{Removals: []FilterField{FieldBrand}}, MergeDecision{Reason: ReasonRefine}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideMerge(tt.ext))
		})
	}
}

func TestMergeFilters(t *testing.T) {
	prior := model.FilterSet{Brand: model.Str("Nissan"), PriceMax: model.Float(300000)}
	next := model.FilterSet{Model: model.Str("Versa"), PriceMin: model.Float(200000), FreeText: "versa desde 200k"}

	refined := MergeFilters(prior, next, MergeDecision{Reason: ReasonRefine})
	assert.Equal(t, "Nissan", *refined.Brand)
	assert.Equal(t, "Versa", *refined.Model)
	assert.Equal(t, 200000.0, *refined.PriceMin)
	assert.Equal(t, 300000.0, *refined.PriceMax)
	assert.Equal(t, "versa desde 200k", refined.FreeText)

	reset := MergeFilters(prior, next, MergeDecision{Reset: true, Reason: ReasonYear})
	assert.Nil(t, reset.Brand)
	assert.Nil(t, reset.PriceMax)
	assert.Equal(t, "Versa", *reset.Model)

	// the prior set is never aliased
	*refined.Brand = "Toyota"
	assert.Equal(t, "Nissan", *prior.Brand)
}

func TestApplyRemovals(t *testing.T) {
	full := model.FilterSet{
		Brand: model.Str("Nissan"), Model: model.Str("Versa"), Version: model.Str("Sense"),
		YearMin: model.Int(2018), YearMax: model.Int(2020),
		PriceMin: model.Float(1), PriceMax: model.Float(2), KmMax: model.Int(3),
	}

	out := ApplyRemovals(full, []FilterField{FieldYear, FieldPrice})
	assert.Nil(t, out.YearMin)
	assert.Nil(t, out.YearMax)
	assert.Nil(t, out.PriceMin)
	assert.Nil(t, out.PriceMax)
	assert.Equal(t, "Nissan", *out.Brand)
	assert.Equal(t, 3, *out.KmMax)

	out = ApplyRemovals(full, []FilterField{FieldBrand, FieldModel, FieldVersion, FieldKm})
	assert.Nil(t, out.Brand)
	assert.Nil(t, out.Model)
	assert.Nil(t, out.Version)
	assert.Nil(t, out.KmMax)
	assert.NotNil(t, out.YearMin)

	assert.True(t, ApplyRemovals(full, []FilterField{FieldAll}).IsEmpty())
	assert.False(t, full.IsEmpty())
}

func TestPlanMerge(t *testing.T) {
	r := fixtureResolver()
	prior := model.FilterSet{Brand: model.Str("Nissan"), Model: model.Str("Versa")}

	t.Run("version resets", func(t *testing.T) {
		ext, d := PlanMerge("la sense", r, prior)
		assert.True(t, d.Reset)
		assert.Equal(t, ReasonVersion, d.Reason)
		require.NotNil(t, ext.Filters.Version)
		assert.Equal(t, "Sense", *ext.Filters.Version)
	})

	t.Run("price refines", func(t *testing.T) {
		ext, d := PlanMerge("hasta 250 mil", r, prior)
		assert.False(t, d.Reset)
		assert.Equal(t, model.Float(250000), ext.Filters.PriceMax)
		merged := MergeFilters(prior, ext.Filters, d)
		assert.Equal(t, "Nissan", *merged.Brand)
		assert.Equal(t, "Versa", *merged.Model)
	})

	t.Run("model of another brand resets", func(t *testing.T) {
		ext, d := PlanMerge("corolla", r, prior)
		assert.True(t, d.Reset)
		assert.Equal(t, ReasonModelScope, d.Reason)
		require.NotNil(t, ext.Filters.Model)
		assert.Equal(t, "Corolla", *ext.Filters.Model)
	})

	t.Run("same brand model refines", func(t *testing.T) {
		ext, d := PlanMerge("sentra", r, prior)
		assert.False(t, d.Reset)
		merged := MergeFilters(prior, ext.Filters, d)
		assert.Equal(t, "Nissan", *merged.Brand)
		assert.Equal(t, "Sentra", *merged.Model)
	})

	t.Run("brand plus removal drops the brand", func(t *testing.T) {
		ext, d := PlanMerge("quita marca toyota", r, prior)
		assert.True(t, d.Reset)
		out := ApplyRemovals(MergeFilters(prior, ext.Filters, d), ext.Removals)
		assert.Nil(t, out.Brand)
		assert.Nil(t, out.Model)
	})
}
