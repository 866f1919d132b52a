package pricing

import (
	"regexp"
	"strings"

	"sjsage522/pricechecker/helpers"
	"sjsage522/pricechecker/internal"
)

// ExtractFunc pulls a price string out of raw page markup, or returns internal.NotAvailable
type ExtractFunc func(page string) string

// Rule binds a site to its extractor. Key is matched as a substring of the resolved domain.
type Rule struct {
	Key     string
	Extract ExtractFunc
}

var (
	itempropPriceRe = regexp.MustCompile(`<meta\s+itemprop="price"\s+content="([\d.]+)"`)
	ogPriceRe       = regexp.MustCompile(`<meta\s+property="product:price:amount"\s+content="([\d.]+)"`)
	// Koruna amounts may group thousands with a no-break space, which \s does not cover
	fategatePriceRe = regexp.MustCompile(`<em>cena:</em>\s*<strong>([\d\s\x{00A0}]+),?-&nbsp;Kč</strong>`)
	// figurky-brno.cz prices follow the c2009 marker on the same line
	figurkyPriceRe = regexp.MustCompile(`c2009.*?([\d\s\x{00A0}]+),?- Kč</span>`)
	figuresPriceRe = regexp.MustCompile(`white-space:nowrap;">([\d\s\x{00A0}]+)K`)
)

// metaPrice extracts a numeric meta content attribute and drops the decimal part
func metaPrice(re *regexp.Regexp) ExtractFunc {
	return func(page string) string {
		m := re.FindStringSubmatch(page)
		if m == nil {
			return internal.NotAvailable
		}
		return helpers.TruncateDecimal(m[1])
	}
}

// korunaPrice extracts a "1 299,- Kč" style amount and removes the thousand separators
func korunaPrice(re *regexp.Regexp) ExtractFunc {
	return func(page string) string {
		m := re.FindStringSubmatch(page)
		if m == nil {
			return internal.NotAvailable
		}
		return helpers.StripWhitespace(m[1])
	}
}

// rules is checked in order, the first matching key wins
var rules = []Rule{
	{Key: "jedishop.cz", Extract: metaPrice(itempropPriceRe)},
	{Key: "svetkomiksu.cz", Extract: metaPrice(ogPriceRe)},
	{Key: "fategate.com", Extract: korunaPrice(fategatePriceRe)},
	{Key: "statuecollectibles.cz", Extract: metaPrice(itempropPriceRe)},
	{Key: "figurky-brno.cz", Extract: korunaPrice(figurkyPriceRe)},
	{Key: "figures.cz", Extract: korunaPrice(figuresPriceRe)},
}

// Rules returns a copy of the extractor table
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor returns the rule handling domain, if any
func RuleFor(domain string) (Rule, bool) {
	for _, r := range rules {
		if strings.Contains(domain, r.Key) {
			return r, true
		}
	}
	return Rule{}, false
}

// Extract returns the price found in page for the given domain.
// Unknown domains yield internal.NotAvailable without looking at the page.
func Extract(domain, page string) string {
	r, ok := RuleFor(domain)
	if !ok {
		return internal.NotAvailable
	}
	return r.Extract(page)
}
