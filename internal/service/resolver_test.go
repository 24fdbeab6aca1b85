package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/model"
)

func TestVocabulary(t *testing.T) {
	v := fixtureCatalog().Vocabulary()

	assert.Equal(t, []string{"Chevrolet", "Mercedes Benz", "Nissan", "Toyota", "Volkswagen"}, v.Brands())
	assert.Equal(t, []string{"Kicks", "Sentra", "Versa", "X-Trail"}, v.Models("nissan"))
	assert.Equal(t, []string{"Advance", "Exclusive", "Sense"}, v.Versions("Nissan", "Versa"))
	assert.Equal(t, []string{"LE", "XLE"}, v.Versions("", "Corolla"))
	assert.Empty(t, v.Models("Ford"))

	assert.True(t, v.HasTerm("versa"))
	assert.True(t, v.HasTerm("trail"))
	assert.False(t, v.HasTerm("hola"))
}

func TestResolver_ResolveBrand(t *testing.T) {
	r := fixtureResolver()
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"busco un nissan versa", "Nissan", true},
		{"busco un nisan versa", "Nissan", true},
		{"vw jetta", "Volkswagen", true},
		{"mercedes clase a", "Mercedes Benz", true},
		{"toyta corolla", "Toyota", true},
		{"chevy aveo", "Chevrolet", true},
		{"quiero un auto familiar", "", false},
		{"ford focus", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := r.ResolveBrand(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_AliasesWinForEveryEntry(t *testing.T) {
	r := fixtureResolver()
	vocab := fixtureCatalog().Vocabulary()
	brands := map[string]string{}
	for _, b := range vocab.Brands() {
		brands[looseKey(b)] = b
	}
	for alias, canon := range DefaultAliases().Brand {
		want, present := brands[canon]
		if !present {
			continue
		}
		got, ok := r.ResolveBrand(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want, got, alias)
	}
}

func TestResolver_ResolveModel(t *testing.T) {
	r := fixtureResolver()

	got, ok := r.ResolveModel("sentar", "Nissan")
	require.True(t, ok)
	assert.Equal(t, "Sentra", got)

	got, ok = r.ResolveModel("una xtrail", "Nissan")
	require.True(t, ok)
	assert.Equal(t, "X-Trail", got)

	got, ok = r.ResolveModel("x trail 2019", "")
	require.True(t, ok)
	assert.Equal(t, "X-Trail", got)

	got, ok = r.ResolveModel("un corola", "")
	require.True(t, ok)
	assert.Equal(t, "Corolla", got)

	_, ok = r.ResolveModel("corolla", "Nissan")
	assert.False(t, ok)
}

func TestResolver_ModelStaysWithinBrand(t *testing.T) {
	r := fixtureResolver()
	vocab := fixtureCatalog().Vocabulary()
	for _, brand := range vocab.Brands() {
		own := map[string]bool{}
		for _, m := range vocab.Models(brand) {
			own[m] = true
		}
		for _, m := range vocab.Models("") {
			if got, ok := r.ResolveModel(m, brand); ok {
				assert.True(t, own[got], "%s resolved to %s under %s", m, got, brand)
			}
		}
	}
}

func TestResolver_ResolveVersion(t *testing.T) {
	r := fixtureResolver()

	_, ok := r.ResolveVersion("lt", "", "")
	assert.False(t, ok, "two-letter versions need a lock")

	got, ok := r.ResolveVersion("lt", "Chevrolet", "")
	require.True(t, ok)
	assert.Equal(t, "LT", got)

	got, ok = r.ResolveVersion("version advance", "Nissan", "Versa")
	require.True(t, ok)
	assert.Equal(t, "Advance", got)

	_, ok = r.ResolveVersion("highline", "Nissan", "Versa")
	assert.False(t, ok)
}

func TestResolver_Resolve(t *testing.T) {
	r := fixtureResolver()

	res := r.Resolve("busco nissan versa sense 2020", model.FilterSet{})
	require.NotNil(t, res.Brand)
	require.NotNil(t, res.Model)
	require.NotNil(t, res.Version)
	assert.Equal(t, "Nissan", *res.Brand)
	assert.Equal(t, "Versa", *res.Model)
	assert.Equal(t, "Sense", *res.Version)

	scoped := r.Resolve("la sense", model.FilterSet{Brand: model.Str("Nissan"), Model: model.Str("Versa")})
	assert.Nil(t, scoped.Brand)
	assert.Nil(t, scoped.Model)
	require.NotNil(t, scoped.Version)
	assert.Equal(t, "Sense", *scoped.Version)
}

func TestResolver_Validate(t *testing.T) {
	r := fixtureResolver()

	out := r.Validate(model.FilterSet{
		Brand:   model.Str("nissan"),
		Model:   model.Str("versa"),
		Version: model.Str("Highline"),
		YearMin: model.Int(2020),
	})
	require.NotNil(t, out.Brand)
	require.NotNil(t, out.Model)
	assert.Equal(t, "Nissan", *out.Brand)
	assert.Equal(t, "Versa", *out.Model)
	assert.Nil(t, out.Version)
	assert.Equal(t, 2020, *out.YearMin)

	gone := r.Validate(model.FilterSet{Brand: model.Str("Ford")})
	assert.Nil(t, gone.Brand)
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brand:\n  nissn: Nissan\nmodel:\n  vrsa: Versa\nstopwords:\n  - Oye\n"), 0o644))

	tables, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "nissan", tables.Brand["nissn"])
	assert.Equal(t, "versa", tables.Model["vrsa"])
	assert.Equal(t, "volkswagen", tables.Brand["vw"])
	assert.True(t, tables.IsStopword("oye"))

	defaults, err := LoadAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAliases(), defaults)

	_, err = LoadAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
