package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kavak-agent/internal/utils"
)

// AliasTables maps misspellings and abbreviations to canonical names. Keys
// and values are stored in loose form. Tables are read-only once built.
type AliasTables struct {
	Brand     map[string]string   `yaml:"brand"`
	Model     map[string]string   `yaml:"model"`
	Version   map[string]string   `yaml:"version"`
	Stopwords map[string]struct{} `yaml:"-"`
}

type aliasFile struct {
	Brand     map[string]string `yaml:"brand"`
	Model     map[string]string `yaml:"model"`
	Version   map[string]string `yaml:"version"`
	Stopwords []string          `yaml:"stopwords"`
}

// DefaultAliases returns the built-in alias tables.
func DefaultAliases() *AliasTables {
	t := &AliasTables{
		Brand: map[string]string{
			"vw":            "volkswagen",
			"vokswagen":     "volkswagen",
			"volkswaguen":   "volkswagen",
			"mercedes":      "mercedes benz",
			"mercedes-benz": "mercedes benz",
			"mercedesbenz":  "mercedes benz",
			"chevy":         "chevrolet",
			"bmv":           "bmw",
			"nisan":         "nissan",
			"nizan":         "nissan",
			"nisaan":        "nissan",
			"nizzan":        "nissan",
			"niisan":        "nissan",
			"nisssan":       "nissan",
			"toyoya":        "toyota",
			"hunday":        "hyundai",
		},
		Model: map[string]string{
			"kix":     "kicks",
			"kick":    "kicks",
			"xtrail":  "x-trail",
			"extrail": "x-trail",
			"estrail": "x-trail",
			"x trail": "x-trail",
			"sentar":  "sentra",
			"sentrea": "sentra",
			"verzza":  "versa",
			"verssa":  "versa",
			"corola":  "corolla",
			"clasea":  "clase a",
		},
		Version: map[string]string{
			"sense":     "sense",
			"advance":   "advance",
			"exclusive": "exclusive",
			"lt":        "lt",
			"ls":        "ls",
			"sr":        "sr",
			"le":        "le",
			"xe":        "xe",
			"xl":        "xl",
		},
		Stopwords: toSet(
			"busco", "buscar", "un", "una", "por", "de", "mas", "menos", "hasta",
			"desde", "quiero", "necesito", "auto", "autos", "carro", "coche", "barato",
			"seminuevo", "semineuvo", "con", "del", "los", "las", "para", "que",
			"entre", "km", "mil", "pesos", "ano", "modelo", "version", "marca",
			"precio", "quita", "quitar", "ver", "usado", "muestrame", "tienes", "hay",
		),
	}
	t.Brand = loosen(t.Brand)
	t.Model = loosen(t.Model)
	t.Version = loosen(t.Version)
	return t
}

// LoadAliases returns the built-in tables merged with the entries of the
// YAML file at path. An empty path yields the defaults.
func LoadAliases(path string) (*AliasTables, error) {
	tables := DefaultAliases()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	mergeAliases(tables.Brand, f.Brand)
	mergeAliases(tables.Model, f.Model)
	mergeAliases(tables.Version, f.Version)
	for _, w := range f.Stopwords {
		if n := utils.Normalize(w); n != "" {
			tables.Stopwords[n] = struct{}{}
		}
	}
	return tables, nil
}

// loosen rewrites keys and values to their loose form.
func loosen(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	mergeAliases(out, m)
	return out
}

func mergeAliases(dst, src map[string]string) {
	for k, v := range src {
		nk, nv := looseKey(k), looseKey(v)
		if nk == "" || nv == "" {
			continue
		}
		dst[nk] = nv
	}
}

// IsStopword reports whether a normalized token is a stopword.
func (a *AliasTables) IsStopword(tok string) bool {
	_, ok := a.Stopwords[tok]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
