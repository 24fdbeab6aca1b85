package service

import (
	"strings"
	"unicode/utf8"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

// FieldThresholds are the acceptance scores for one field: Phrase and
// TokenSet on the 0..100 scale, Token as a 0..1 edit-distance similarity.
type FieldThresholds struct {
	Phrase   float64
	TokenSet float64
	Token    float64
}

// MatchThresholds holds the thresholds per entity field.
type MatchThresholds struct {
	Brand   FieldThresholds
	Model   FieldThresholds
	Version FieldThresholds
}

// DefaultMatchThresholds returns the tuned defaults.
func DefaultMatchThresholds() MatchThresholds {
	return MatchThresholds{
		Brand:   FieldThresholds{Phrase: 90, TokenSet: 88, Token: 0.80},
		Model:   FieldThresholds{Phrase: 88, TokenSet: 86, Token: 0.78},
		Version: FieldThresholds{Phrase: 85, TokenSet: 85, Token: 0.85},
	}
}

// Resolution holds the canonical values found in a message.
type Resolution struct {
	Brand   *string
	Model   *string
	Version *string
}

// Resolver maps free text to canonical catalog names. It never returns a
// value that is not in its vocabulary.
type Resolver struct {
	vocab      *Vocabulary
	aliases    *AliasTables
	thresholds MatchThresholds
}

func NewResolver(vocab *Vocabulary, aliases *AliasTables, thresholds MatchThresholds) *Resolver {
	if vocab == nil {
		vocab = NewVocabulary(nil)
	}
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Resolver{vocab: vocab, aliases: aliases, thresholds: thresholds}
}

// ResolveBrand finds a brand in text.
func (r *Resolver) ResolveBrand(text string) (string, bool) {
	return r.match(text, r.vocab.Brands(), r.aliases.Brand, r.thresholds.Brand, true)
}

// ResolveModel finds a model in text, restricted to brand's models when
// brand is set.
func (r *Resolver) ResolveModel(text, brand string) (string, bool) {
	return r.match(text, r.vocab.Models(brand), r.aliases.Model, r.thresholds.Model, true)
}

// ResolveVersion finds a version in text within the brand/model scope. Two
// letter versions ("lt", "le") only count once a brand or model is locked.
func (r *Resolver) ResolveVersion(text, brand, modelName string) (string, bool) {
	locked := brand != "" || modelName != ""
	return r.match(text, r.vocab.Versions(brand, modelName), r.aliases.Version, r.thresholds.Version, locked)
}

// Resolve runs brand, model and version resolution in that order. Each lock
// narrows the next step. A brand in scope is kept as the lock and not
// searched for again; a model in scope only narrows versions when the text
// names no other model.
func (r *Resolver) Resolve(text string, scope model.FilterSet) Resolution {
	var res Resolution

	brandLock := ""
	if scope.Brand != nil {
		brandLock = *scope.Brand
	} else if b, ok := r.ResolveBrand(text); ok {
		res.Brand = &b
		brandLock = b
	}

	modelLock := ""
	if m, ok := r.ResolveModel(text, brandLock); ok {
		res.Model = &m
		modelLock = m
	} else if scope.Model != nil {
		modelLock = *scope.Model
	}

	if v, ok := r.ResolveVersion(text, brandLock, modelLock); ok {
		res.Version = &v
	}
	return res
}

// Validate re-checks brand, model and version against the vocabulary,
// canonicalizing spellings and dropping values that no longer exist in scope.
func (r *Resolver) Validate(f model.FilterSet) model.FilterSet {
	out := f.Clone()
	out.FreeText = f.FreeText

	brand, modelName := "", ""
	if out.Brand != nil {
		if b, ok := r.match(*out.Brand, r.vocab.Brands(), r.aliases.Brand, r.thresholds.Brand, true); ok {
			out.Brand, brand = &b, b
		} else {
			out.Brand = nil
		}
	}
	if out.Model != nil {
		if m, ok := r.match(*out.Model, r.vocab.Models(brand), r.aliases.Model, r.thresholds.Model, true); ok {
			out.Model, modelName = &m, m
		} else {
			out.Model = nil
		}
	}
	if out.Version != nil {
		if v, ok := r.match(*out.Version, r.vocab.Versions(brand, modelName), r.aliases.Version, r.thresholds.Version, true); ok {
			out.Version = &v
		} else {
			out.Version = nil
		}
	}
	return out
}

// match resolves text against candidates: alias or exact n-gram hit first,
// then whole-phrase weighted ratio, then token-set ratio, then per-token
// edit distance. Ties go to the first candidate in sorted order.
func (r *Resolver) match(text string, candidates []string, aliases map[string]string, th FieldThresholds, allowShort bool) (string, bool) {
	phrase := looseKey(text)
	if phrase == "" || len(candidates) == 0 {
		return "", false
	}
	tokens := strings.Fields(phrase)

	index := make(map[string]string, len(candidates))
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = looseKey(c)
		index[keys[i]] = c
	}

	for i := range tokens {
		for n := min(3, len(tokens)-i); n >= 1; n-- {
			gram := strings.Join(tokens[i:i+n], " ")
			if utf8.RuneCountInString(gram) < 3 && !allowShort {
				continue
			}
			if canon, ok := aliases[gram]; ok {
				if c, ok := index[canon]; ok {
					return c, true
				}
			}
			if n == 1 && !r.selfHitAllowed(gram) {
				continue
			}
			if c, ok := index[gram]; ok {
				return c, true
			}
		}
	}

	if c, ok := bestScore(phrase, candidates, keys, utils.WeightedRatio); ok && c.score >= th.Phrase {
		return c.name, true
	}
	if c, ok := bestScore(phrase, candidates, keys, utils.TokenSetRatio); ok && c.score >= th.TokenSet {
		return c.name, true
	}

	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < 3 || utils.IsNumeric(tok) || r.aliases.IsStopword(tok) {
			continue
		}
		best := scored{}
		for i, key := range keys {
			words := []string{key}
			if strings.Contains(key, " ") {
				words = append(words, strings.Fields(key)...)
			}
			for _, w := range words {
				if utf8.RuneCountInString(w) < 3 {
					continue
				}
				if sim := utils.LevenshteinSimilarity(tok, w); sim > best.score {
					best = scored{name: candidates[i], score: sim}
				}
			}
		}
		if best.name != "" && best.score >= th.Token {
			return best.name, true
		}
	}
	return "", false
}

func (r *Resolver) selfHitAllowed(tok string) bool {
	return utf8.RuneCountInString(tok) >= 2 && !utils.IsNumeric(tok) && !r.aliases.IsStopword(tok)
}

type scored struct {
	name  string
	score float64
}

// bestScore skips candidates shorter than three runes; those only match
// through exact or alias hits.
func bestScore(phrase string, candidates, keys []string, scorer func(a, b string) float64) (scored, bool) {
	best := scored{}
	for i, key := range keys {
		if utf8.RuneCountInString(key) < 3 {
			continue
		}
		if s := scorer(phrase, key); s > best.score {
			best = scored{name: candidates[i], score: s}
		}
	}
	return best, best.name != ""
}
