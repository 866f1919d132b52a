package sheets

import (
	"context"

	"sjsage522/pricechecker/internal"
	"sjsage522/pricechecker/logger"
	"sjsage522/pricechecker/pkg/errors"
)

// Sink appends result rows to the data tab. Rows are only ever appended.
type Sink struct {
	client *Client
	sheet  string
	log    *logger.Logger
}

// NewSink creates a sink writing to the given tab
func NewSink(client *Client, sheet string) *Sink {
	return &Sink{
		client: client,
		sheet:  sheet,
		log:    logger.ForSheets(sheet),
	}
}

// EnsureHeader writes the header row when the tab is empty
func (s *Sink) EnsureHeader(ctx context.Context) error {
	values, err := s.client.values(ctx, quoteSheet(s.sheet)+"!A1:E1")
	if err != nil {
		return errors.NewSheet(s.sheet, "failed to open data tab", err)
	}
	if len(values) > 0 {
		return nil
	}

	if err := s.client.appendValues(ctx, quoteSheet(s.sheet), [][]interface{}{internal.Header}); err != nil {
		return errors.NewSheet(s.sheet, "failed to write header", err)
	}
	s.log.Info().Msg("Wrote header row")
	return nil
}

// AppendRows appends all rows in a single request, keeping their order
func (s *Sink) AppendRows(ctx context.Context, rows []internal.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}

	if err := s.client.appendValues(ctx, quoteSheet(s.sheet), values); err != nil {
		return errors.NewSheet(s.sheet, "failed to append rows", err)
	}
	s.log.Info().Int("rows", len(rows)).Msg("Appended rows")
	return nil
}
