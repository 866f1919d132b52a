package helpers

import (
	"strings"
	"unicode"
)

// StripWhitespace removes every whitespace rune, e.g. thousand separators in "1 299"
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// TruncateDecimal drops everything from the first '.' on, so "1299.90" becomes "1299"
func TruncateDecimal(s string) string {
	head, _, _ := strings.Cut(s, ".")
	return head
}

// NormalizeURL trims surrounding whitespace and escapes every '%' that does not
// start a valid percent-encoding, so "sleva-50%-lego" stays parseable
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "%") {
		return rawURL
	}

	var b strings.Builder
	for i := 0; i < len(rawURL); i++ {
		if rawURL[i] == '%' && !(i+2 < len(rawURL) && isHex(rawURL[i+1]) && isHex(rawURL[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(rawURL[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
