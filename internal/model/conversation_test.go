package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationContext_DisplayIndex(t *testing.T) {
	c := NewConversationContext("local")
	c.ResetDisplay([]string{"a", "b", "c"})
	assert.Equal(t, map[int]string{1: "a", 2: "b", 3: "c"}, c.DisplayIndex)

	c.ExtendDisplay(4, []string{"d", "e"})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, c.DisplayNumbers())
	assert.Equal(t, "a", c.DisplayIndex[1])
	assert.Equal(t, "e", c.DisplayIndex[5])

	c.ResetDisplay([]string{"z"})
	assert.Equal(t, map[int]string{1: "z"}, c.DisplayIndex)
}

func TestConversationContext_ResolveCarRef(t *testing.T) {
	c := NewConversationContext("local")
	c.ResetDisplay([]string{"322722", "120205"})

	tests := []struct {
		token  string
		want   string
		wantOK bool
	}{
		{"1", "322722", true},
		{"2", "120205", true},
		{"3", "", false},
		{"001", "322722", true},
		{"999", "", false},
		{"4455", "4455", true},
		{"322722", "322722", true},
		{"x1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := c.ResolveCarRef(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConversationContext_CloneIsDeep(t *testing.T) {
	c := NewConversationContext("local")
	c.Filters.Brand = Str("Nissan")
	c.Filters.FreeText = "busco nissan"
	c.ResetDisplay([]string{"a"})

	cp := c.Clone()
	require.NotNil(t, cp)
	*cp.Filters.Brand = "Kia"
	cp.DisplayIndex[1] = "b"

	assert.Equal(t, "Nissan", *c.Filters.Brand)
	assert.Equal(t, "a", c.DisplayIndex[1])
	assert.Empty(t, cp.Filters.FreeText)
}

func TestFilterSet_Chips(t *testing.T) {
	f := FilterSet{Brand: Str("Nissan"), Model: Str("Versa"), YearMin: Int(2018), YearMax: Int(2020), KmMax: Int(100000)}
	assert.Equal(t, []string{"Nissan", "Versa", "2018–2020", "hasta 100,000 km"}, f.Chips())

	g := FilterSet{YearMin: Int(2020), PriceMin: Float(150000), PriceMax: Float(300000)}
	assert.Equal(t, []string{"año desde 2020", "desde $150,000", "hasta $300,000"}, g.Chips())
	assert.Equal(t, []string{"hasta 2019"}, FilterSet{YearMax: Int(2019)}.Chips())
	assert.Empty(t, FilterSet{}.Chips())
	assert.True(t, FilterSet{}.IsEmpty())
	assert.False(t, f.IsEmpty())
}

func TestCatalogItem_TitleAndValid(t *testing.T) {
	item := CatalogItem{ID: "1", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2020, Km: 45837, Price: 265999}
	assert.Equal(t, "Nissan Versa Sense 2020", item.Title())
	assert.True(t, item.Valid())

	item.Version = ""
	assert.Equal(t, "Nissan Versa 2020", item.Title())

	item.Price = 0
	assert.False(t, item.Valid())
}
