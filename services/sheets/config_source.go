package sheets

import (
	"context"

	"sjsage522/pricechecker/internal"
	"sjsage522/pricechecker/logger"
	"sjsage522/pricechecker/pkg/errors"
)

// ConfigSource reads product URLs from the config tab.
// Columns are [product_id, url, fetch_flag, ...] below a header row.
type ConfigSource struct {
	client *Client
	sheet  string
	log    *logger.Logger
}

// NewConfigSource creates a config source reading the given tab
func NewConfigSource(client *Client, sheet string) *ConfigSource {
	return &ConfigSource{
		client: client,
		sheet:  sheet,
		log:    logger.ForSheets(sheet),
	}
}

// EligibleEntries returns, in sheet order, the entries marked for fetching
func (s *ConfigSource) EligibleEntries(ctx context.Context) ([]internal.ConfigEntry, error) {
	values, err := s.client.values(ctx, quoteSheet(s.sheet))
	if err != nil {
		return nil, errors.NewSheet(s.sheet, "failed to read config rows", err)
	}

	var eligible []internal.ConfigEntry
	for _, entry := range ParseEntries(values) {
		s.log.Debug().
			Int("row", entry.Row).
			Str("product_id", entry.ProductID).
			Str("url", entry.URL).
			Str("fetch", entry.FetchFlag).
			Bool("eligible", entry.Eligible()).
			Msg("Config row")
		if entry.Eligible() {
			eligible = append(eligible, entry)
		}
	}

	s.log.Info().Int("selected", len(eligible)).Msg("Selected URLs to fetch")
	return eligible, nil
}

// ParseEntries converts raw sheet values to entries, skipping the header row.
// Missing trailing cells read as empty strings.
func ParseEntries(values [][]interface{}) []internal.ConfigEntry {
	if len(values) <= 1 {
		return nil
	}
	entries := make([]internal.ConfigEntry, 0, len(values)-1)
	for i, row := range values[1:] {
		entries = append(entries, internal.ConfigEntry{
			ProductID: cell(row, 0),
			URL:       cell(row, 1),
			FetchFlag: cell(row, 2),
			Row:       i + 2,
		})
	}
	return entries
}
