package model

import (
	"fmt"
	"strings"
)

// DefaultLocation is used when a catalog row carries no location.
const DefaultLocation = "Online"

// CatalogItem represents one car offered in the catalog. Items are immutable
// once a catalog snapshot is built.
type CatalogItem struct {
	ID       string  `json:"id" db:"stock_id"`
	Brand    string  `json:"brand" db:"make"`
	Model    string  `json:"model" db:"model"`
	Version  string  `json:"version,omitempty" db:"version"`
	Year     int     `json:"year" db:"year"`
	Km       int     `json:"km" db:"km"`
	Price    float64 `json:"price" db:"price"`
	Location string  `json:"location" db:"location"`
}

// Title renders "Brand Model Version Year", skipping an empty version.
func (c CatalogItem) Title() string {
	parts := []string{c.Brand, c.Model}
	if strings.TrimSpace(c.Version) != "" {
		parts = append(parts, c.Version)
	}
	parts = append(parts, fmt.Sprintf("%d", c.Year))
	return strings.Join(parts, " ")
}

// Valid reports whether the item can enter a catalog snapshot.
func (c CatalogItem) Valid() bool {
	return c.ID != "" &&
		strings.TrimSpace(c.Brand) != "" &&
		strings.TrimSpace(c.Model) != "" &&
		c.Year >= 1900 &&
		c.Km >= 0 &&
		c.Price > 0
}
