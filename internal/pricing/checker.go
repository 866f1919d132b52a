package pricing

import (
	"context"
	"strings"

	"sjsage522/pricechecker/internal"
)

// ErrorPrefix starts the price text of a page that could not be fetched
const ErrorPrefix = "Error: "

// IsFetchError reports whether price text stems from a fetch failure
func IsFetchError(price string) bool {
	return strings.HasPrefix(price, ErrorPrefix)
}

// Fetcher retrieves the text of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Checker looks up the current price of a single product page
type Checker struct {
	fetcher Fetcher
}

// NewChecker creates a checker using fetcher for page retrieval
func NewChecker(fetcher Fetcher) *Checker {
	return &Checker{fetcher: fetcher}
}

// Check fetches url and extracts its price. A fetch failure never escapes:
// it becomes an "Error: ..." price while the domain is still resolved from url.
func (c *Checker) Check(ctx context.Context, url string) internal.PriceResult {
	domain := ResolveDomain(url)

	page, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return internal.PriceResult{Price: ErrorPrefix + err.Error(), Domain: domain}
	}

	return internal.PriceResult{Price: Extract(domain, page), Domain: domain}
}
