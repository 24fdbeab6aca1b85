package model

import (
	"strconv"

	"kavak-agent/internal/utils"
)

// FilterSet holds the structured search filters accumulated for a
// conversation. Brand, Model and Version only ever hold canonical catalog
// values.
type FilterSet struct {
	Brand    *string  `json:"brand,omitempty"`
	Model    *string  `json:"model,omitempty"`
	Version  *string  `json:"version,omitempty"`
	YearMin  *int     `json:"year_min,omitempty"`
	YearMax  *int     `json:"year_max,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	KmMax    *int     `json:"km_max,omitempty"`

	// FreeText is the raw message that produced this set. It is never persisted.
	FreeText string `json:"-"`
}

// IsEmpty reports whether no filter field is set.
func (f FilterSet) IsEmpty() bool {
	return f.Brand == nil && f.Model == nil && f.Version == nil &&
		f.YearMin == nil && f.YearMax == nil &&
		f.PriceMin == nil && f.PriceMax == nil && f.KmMax == nil
}

// Clone returns a deep copy with FreeText cleared.
func (f FilterSet) Clone() FilterSet {
	return FilterSet{
		Brand:    cloneString(f.Brand),
		Model:    cloneString(f.Model),
		Version:  cloneString(f.Version),
		YearMin:  cloneInt(f.YearMin),
		YearMax:  cloneInt(f.YearMax),
		PriceMin: cloneFloat(f.PriceMin),
		PriceMax: cloneFloat(f.PriceMax),
		KmMax:    cloneInt(f.KmMax),
	}
}

// Chips renders the non-empty filters as short Spanish labels, in a stable
// order: brand, model, version, years, price, km.
func (f FilterSet) Chips() []string {
	var chips []string
	for _, p := range []*string{f.Brand, f.Model, f.Version} {
		if p != nil && *p != "" {
			chips = append(chips, *p)
		}
	}
	switch {
	case f.YearMin != nil && f.YearMax != nil:
		chips = append(chips, strconv.Itoa(*f.YearMin)+"–"+strconv.Itoa(*f.YearMax))
	case f.YearMin != nil:
		chips = append(chips, "año desde "+strconv.Itoa(*f.YearMin))
	case f.YearMax != nil:
		chips = append(chips, "hasta "+strconv.Itoa(*f.YearMax))
	}
	if f.PriceMin != nil {
		chips = append(chips, "desde $"+utils.FormatThousands(*f.PriceMin))
	}
	if f.PriceMax != nil {
		chips = append(chips, "hasta $"+utils.FormatThousands(*f.PriceMax))
	}
	if f.KmMax != nil {
		chips = append(chips, "hasta "+utils.FormatThousands(float64(*f.KmMax))+" km")
	}
	return chips
}

// Str, Int and Float build optional filter values.
func Str(s string) *string     { return &s }
func Int(i int) *int           { return &i }
func Float(v float64) *float64 { return &v }

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SearchRequest is the body of POST /api/v1/cars/search.
type SearchRequest struct {
	Brand    string   `json:"brand"`
	Model    string   `json:"model"`
	Version  string   `json:"version"`
	YearMin  *int     `json:"year_min"`
	YearMax  *int     `json:"year_max"`
	PriceMin *float64 `json:"price_min"`
	PriceMax *float64 `json:"price_max"`
	KmMax    *int     `json:"km_max"`
	Query    string   `json:"query"`
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
}

// SearchResponse is returned by the structured search endpoint.
type SearchResponse struct {
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
	Filters FilterSet     `json:"filters"`
	Items   []CatalogItem `json:"items"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	ChannelID string `json:"channel_id"`
	Text      string `json:"text" binding:"required"`
}

// ChatResponse carries the reply for a chat turn.
type ChatResponse struct {
	ChannelID string `json:"channel_id"`
	Reply     string `json:"reply"`
}
