package pricing

import (
	"math"
	"strconv"
	"strings"

	"sjsage522/pricechecker/internal"
)

// DateLayout is the format of the row date column
const DateLayout = "2006-01-02"

// ParsePrice coerces price text to an integer, truncating toward zero.
// Anything that is not a finite number within int64 range is not available.
func ParsePrice(text string) internal.Price {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return internal.Price{}
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return internal.Price{}
	}
	return internal.Price{Amount: int64(f), Available: true}
}

// BuildRow assembles an output row. Fetch errors, extraction misses and
// unknown domains all end up as a not available price here.
func BuildRow(date, url, priceText, productID, domain string) internal.ResultRow {
	return internal.ResultRow{
		Date:      date,
		URL:       url,
		Price:     ParsePrice(priceText),
		ProductID: productID,
		Domain:    domain,
	}
}
