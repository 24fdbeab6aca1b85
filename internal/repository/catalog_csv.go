package repository

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

// CatalogColumns is the canonical CSV header written by WriteCatalogCSV.
var CatalogColumns = []string{"id", "brand", "model", "version", "year", "km", "price", "location"}

// columnSynonyms maps a normalized header to its canonical column.
var columnSynonyms = map[string]string{
	"id": "id", "stock_id": "id", "stockid": "id", "car_id": "id", "codigo": "id",
	"brand": "brand", "make": "brand", "marca": "brand",
	"model": "model", "modelo": "model",
	"version": "version", "trim": "version", "variant": "version",
	"year": "year", "anio": "year", "ano": "year",
	"km": "km", "kms": "km", "kilometraje": "km", "mileage": "km", "odometer": "km",
	"price": "price", "precio": "price", "amount": "price", "cost": "price",
	"location": "location", "ubicacion": "location", "ciudad": "location", "sede": "location", "source": "location",
}

var requiredColumns = []string{"id", "brand", "model", "year", "km", "price"}

// LoadCatalogCSV reads a catalog file. See ReadCatalogCSV.
func LoadCatalogCSV(path string) ([]model.CatalogItem, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ReadCatalogCSV(bytes.NewReader(data))
}

// ReadCatalogCSV parses a catalog with a comma or semicolon separator and
// any of the known header synonyms. It returns the valid rows and the
// number of rows dropped.
func ReadCatalogCSV(r io.Reader) ([]model.CatalogItem, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	var lastErr error
	for _, sep := range []rune{',', ';'} {
		items, dropped, err := parseCatalog(data, sep)
		if err == nil {
			return items, dropped, nil
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func parseCatalog(data []byte, sep rune) ([]model.CatalogItem, int, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("catalog is empty")
	}

	index := map[string]int{}
	for i, h := range records[0] {
		key := strings.ReplaceAll(utils.Normalize(h), " ", "_")
		if col, ok := columnSynonyms[key]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("missing catalog columns after mapping: %s", strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	items := make([]model.CatalogItem, 0, len(records)-1)
	dropped := 0
	for _, rec := range records[1:] {
		it := model.CatalogItem{
			ID:       field(rec, "id"),
			Brand:    field(rec, "brand"),
			Model:    field(rec, "model"),
			Version:  field(rec, "version"),
			Year:     int(coerceNumber(field(rec, "year"))),
			Km:       int(coerceNumber(field(rec, "km"))),
			Price:    coerceNumber(field(rec, "price")),
			Location: field(rec, "location"),
		}
		if it.Location == "" {
			it.Location = model.DefaultLocation
		}
		if !it.Valid() {
			dropped++
			continue
		}
		items = append(items, it)
	}
	return items, dropped, nil
}

// coerceNumber reads "265999", "265,999.00" or "$265,999"; anything else is 0.
func coerceNumber(s string) float64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if v, ok := utils.ParseMoney(s); ok {
		return v
	}
	return 0
}

// WriteCatalogCSV writes items with the canonical header.
func WriteCatalogCSV(w io.Writer, items []model.CatalogItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CatalogColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, it := range items {
		rec := []string{
			it.ID,
			it.Brand,
			it.Model,
			it.Version,
			strconv.Itoa(it.Year),
			strconv.Itoa(it.Km),
			strconv.FormatFloat(it.Price, 'f', -1, 64),
			it.Location,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write car %s: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
