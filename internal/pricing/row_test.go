package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/pricechecker/internal"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		text  string
		price internal.Price
	}{
		{"499", internal.Price{Amount: 499, Available: true}},
		{"1299.90", internal.Price{Amount: 1299, Available: true}},
		{"1299.99", internal.Price{Amount: 1299, Available: true}},
		{" 349 ", internal.Price{Amount: 349, Available: true}},
		{"-12.7", internal.Price{Amount: -12, Available: true}},
		{"0", internal.Price{Amount: 0, Available: true}},
		{"1e3", internal.Price{Amount: 1000, Available: true}},
		{"N/A", internal.Price{}},
		{"Error: timeout", internal.Price{}},
		{"", internal.Price{}},
		{"1 299", internal.Price{}},
		{"1,299", internal.Price{}},
		{"NaN", internal.Price{}},
		{"inf", internal.Price{}},
		{"1e400", internal.Price{}},
		{"1e19", internal.Price{}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.price, ParsePrice(tc.text), tc.text)
	}
}

func TestBuildRow(t *testing.T) {
	row := BuildRow("2024-05-01", "https://www.jedishop.cz/x", "499", "P1", "jedishop.cz")
	assert.Equal(t, []interface{}{"2024-05-01", "https://www.jedishop.cz/x", int64(499), "P1", "jedishop.cz"}, row.Values())

	row = BuildRow("2024-05-01", "https://nowhere.invalid/", "Error: dial tcp: no such host", "P2", "nowhere.invalid")
	assert.Equal(t, "N/A", row.Price.Value())
	assert.Equal(t, "nowhere.invalid", row.Domain)
}

func TestWhitespaceThousandsEndToEnd(t *testing.T) {
	// "1 299" is normalised by the extractor before coercion
	text := Extract("fategate.com", `<em>cena:</em><strong>1 299,-&nbsp;Kč</strong>`)
	assert.Equal(t, "1299", text)
	assert.Equal(t, internal.Price{Amount: 1299, Available: true}, ParsePrice(text))
}
