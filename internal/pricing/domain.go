package pricing

import (
	"net/url"
	"strings"

	"sjsage522/pricechecker/helpers"
)

// ResolveDomain returns the lowercased host of rawURL without a leading "www.".
// The port, if any, is kept. Surrounding whitespace and stray '%' signs are
// tolerated; URLs that still fail to parse resolve to "".
func ResolveDomain(rawURL string) string {
	u, err := url.Parse(helpers.NormalizeURL(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
