package internal

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable is the marker stored in place of a usable price
const NotAvailable = "N/A"

// Header is the header row of the output sheet
var Header = []interface{}{"Date", "URL", "Price", "Product ID", "Domain"}

// ConfigEntry is one row of the config sheet
type ConfigEntry struct {
	ProductID string
	URL       string
	FetchFlag string
	// Row is the 1-based sheet row the entry was read from
	Row int
}

// Eligible reports whether the entry is marked for fetching
func (e ConfigEntry) Eligible() bool {
	return e.URL != "" && strings.TrimSpace(e.FetchFlag) == "1"
}

// PriceResult is the outcome of checking a single URL.
// Price holds numeric text, "Error: ..." text or NotAvailable.
type PriceResult struct {
	Price  string
	Domain string
}

// Price is a truncated integer price or the not available marker
type Price struct {
	Amount    int64
	Available bool
}

// Value returns the sheet cell value: the integer amount or NotAvailable
func (p Price) Value() interface{} {
	if !p.Available {
		return NotAvailable
	}
	return p.Amount
}

func (p Price) String() string {
	if !p.Available {
		return NotAvailable
	}
	return strconv.FormatInt(p.Amount, 10)
}

// MarshalJSON encodes the price as a number or the "N/A" string
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

// ResultRow is one dated record appended to the output sheet
type ResultRow struct {
	Date      string `json:"date"`
	URL       string `json:"url"`
	Price     Price  `json:"price"`
	ProductID string `json:"product_id"`
	Domain    string `json:"domain"`
}

// Values returns the row in output sheet column order
func (r ResultRow) Values() []interface{} {
	return []interface{}{r.Date, r.URL, r.Price.Value(), r.ProductID, r.Domain}
}
