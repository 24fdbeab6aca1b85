package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	moneyExpr = `\$?\s?(?:\d{1,3}(?:[ .,]\d{3})+|\d+)(?:[.,]\d+)?(?:\s?(?:millones|mil|k|m)\b)?`
	yearExpr  = `(?:199\d|20[0-4]\d)`

	// MoneyPattern matches one amount such as "$50,000", "40k" or "1.5 millones".
	MoneyPattern = moneyExpr

	// UsedCarKmMax is the km ceiling implied by "usado" / "pocos km".
	UsedCarKmMax = 100000
)

var (
	moneyTokenRe     = regexp.MustCompile(moneyExpr)
	priceRangeRe     = regexp.MustCompile(`(?:entre|de)\s+(` + moneyExpr + `)\s*(?:y|al|a|-)\s*(` + moneyExpr + `)`)
	priceDashRangeRe = regexp.MustCompile(`(` + moneyExpr + `)\s*-\s*(` + moneyExpr + `)`)
	priceMinRe       = regexp.MustCompile(`(?:mas de|mayor a|mayor de|arriba de|desde|minimo|por lo menos|al menos)\s*(` + moneyExpr + `)`)
	priceMaxRe       = regexp.MustCompile(`(?:menos de|menor a|menor de|por debajo de|debajo de|hasta|tope maximo|tope de|tope|maximo|max|no mas de|presupuesto de|presupuesto)\s*(` + moneyExpr + `)`)

	yearRe         = regexp.MustCompile(`\b` + yearExpr + `\b`)
	yearRangeRe    = regexp.MustCompile(`(?:entre|del|de)?\s*\b(` + yearExpr + `)\s*(?:y|al|a|-)\s*(` + yearExpr + `)\b`)
	yearMaxRe      = regexp.MustCompile(`(?:hasta|antes del?|anterior a|maximo)\s*(?:el\s+)?(?:ano\s+)?(` + yearExpr + `)\b`)
	kmPhraseRe     = regexp.MustCompile(`(?:^|\s)(?:menos de|hasta|maximo|max|no mas de|debajo de)?\s*(` + moneyExpr + `)\s*(?:kms|km|kilometros)\b`)
	usedCarHintRe  = regexp.MustCompile(`\b(?:usados?|usadas?|pocos? km|poco kilometraje|con poco uso)\b`)
	dotThousandsRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	commaThousRe   = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	commaDecimalRe = regexp.MustCompile(`^\d+,\d{1,2}$`)
)

var multipliers = []struct {
	suffix string
	factor float64
}{
	{"millones", 1e6},
	{"mil", 1e3},
	{"k", 1e3},
	{"m", 1e6},
}

// ParseMoney parses amounts like "50k", "50 mil", "$50,000", "50.000",
// "1.5 millones". It returns false when no number can be read.
func ParseMoney(token string) (float64, bool) {
	t := Normalize(token)
	t = strings.ReplaceAll(t, "$", "")
	t = strings.TrimSpace(strings.TrimSuffix(t, "pesos"))
	t = strings.TrimSpace(strings.TrimSuffix(t, "mxn"))

	factor := 1.0
	for _, m := range multipliers {
		if strings.HasSuffix(t, m.suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, m.suffix))
			factor = m.factor
			break
		}
	}

	n, ok := parseNumber(t)
	if !ok {
		return 0, false
	}
	return n * factor, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, " ", "")
	if !strings.ContainsAny(s, "0123456789") {
		return 0, false
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234.567,50
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dots > 1, dotThousandsRe.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case commaThousRe.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case commaDecimalRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case commas > 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// ExtractPriceBounds reads a price range, a minimum phrase ("mas de",
// "desde") or a maximum phrase ("menos de", "hasta"). A lone amount that
// clearly is money defaults to a maximum. Years and km amounts are ignored.
func ExtractPriceBounds(text string) (minPrice, maxPrice *float64) {
	t := Normalize(text)
	t = withoutKm(t)
	t = yearRangeRe.ReplaceAllString(t, " ")

	for _, re := range []*regexp.Regexp{priceRangeRe, priceDashRangeRe} {
		for _, m := range re.FindAllStringSubmatch(t, -1) {
			lo, okLo := priceValue(m[1])
			hi, okHi := priceValue(m[2])
			if !okLo || !okHi {
				continue
			}
			// "de 250 a 300 mil": the left side borrows the right side's multiplier.
			if f := multiplierOf(m[2]); f > 1 && multiplierOf(m[1]) == 1 && lo*f <= hi {
				lo *= f
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return &lo, &hi
		}
	}

	if m := priceMinRe.FindStringSubmatch(t); m != nil {
		if v, ok := priceValue(m[1]); ok {
			minPrice = &v
		}
	}
	if m := priceMaxRe.FindStringSubmatch(t); m != nil {
		if v, ok := priceValue(m[1]); ok {
			maxPrice = &v
		}
	}
	if minPrice != nil || maxPrice != nil {
		return minPrice, maxPrice
	}

	for _, tok := range moneyTokenRe.FindAllString(t, -1) {
		if !looksLikeMoney(tok) {
			continue
		}
		if v, ok := priceValue(tok); ok {
			return nil, &v
		}
	}
	return nil, nil
}

// priceValue rejects bare year tokens and zero amounts.
func priceValue(tok string) (float64, bool) {
	if isYearToken(tok) {
		return 0, false
	}
	v, ok := ParseMoney(tok)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func looksLikeMoney(tok string) bool {
	tok = strings.TrimSpace(tok)
	if isYearToken(tok) {
		return false
	}
	if strings.HasPrefix(tok, "$") || strings.ContainsAny(tok, ".,") || strings.Contains(tok, " ") {
		return true
	}
	if multiplierOf(tok) > 1 {
		return true
	}
	v, ok := ParseMoney(tok)
	return ok && v >= 10000
}

func multiplierOf(tok string) float64 {
	tok = strings.TrimSpace(Normalize(tok))
	for _, m := range multipliers {
		if strings.HasSuffix(tok, m.suffix) {
			return m.factor
		}
	}
	return 1
}

func isYearToken(tok string) bool {
	tok = strings.TrimSpace(tok)
	return len(tok) == 4 && yearRe.MatchString(tok)
}

// ExtractYear returns the first year token in [1990, 2049]. Numbers inside
// km phrases ("menos de 2000 km") are not years.
func ExtractYear(text string) (int, bool) {
	m := yearRe.FindString(withoutKm(Normalize(text)))
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

// ExtractYearBounds understands "entre 2018 y 2020", "2018-2020" and
// "hasta 2020". Any other year token becomes the minimum.
func ExtractYearBounds(text string) (minYear, maxYear *int) {
	t := withoutKm(Normalize(text))
	if m := yearRangeRe.FindStringSubmatch(t); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &lo, &hi
	}
	if m := yearMaxRe.FindStringSubmatch(t); m != nil {
		hi, _ := strconv.Atoi(m[1])
		return nil, &hi
	}
	if y, ok := ExtractYear(t); ok {
		return &y, nil
	}
	return nil, nil
}

func withoutKm(t string) string {
	return kmPhraseRe.ReplaceAllString(t, " ")
}

// ExtractKmMax reads "menos de 50 mil km" style bounds, falling back to
// UsedCarKmMax for "usado" / "pocos km" hints.
func ExtractKmMax(text string) (int, bool) {
	t := Normalize(text)
	if m := kmPhraseRe.FindStringSubmatch(t); m != nil {
		if v, ok := ParseMoney(m[1]); ok && v > 0 {
			return int(v), true
		}
	}
	if usedCarHintRe.MatchString(t) {
		return UsedCarKmMax, true
	}
	return 0, false
}

// FormatThousands renders n with comma thousand separators, e.g. 265,999.
func FormatThousands(n float64) string {
	return message.NewPrinter(language.English).Sprintf("%d", int64(math.Round(n)))
}
