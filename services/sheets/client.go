package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"sjsage522/pricechecker/pkg/errors"
)

// Client is a caller-owned handle to one spreadsheet.
// It must be released with Close; using it afterwards returns an error.
type Client struct {
	mu            sync.RWMutex
	svc           *sheets.Service
	spreadsheetID string
}

// Open authenticates with the service account key in credentialsFile and
// binds the client to spreadsheetID. An empty credentialsFile relies on opts
// (or application default credentials) for authentication.
func Open(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.NewConfiguration("spreadsheet id is empty", nil)
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.NewConfiguration("failed to create sheets client", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Close releases the handle
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc = nil
	return nil
}

func (c *Client) service() (*sheets.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.svc == nil {
		return nil, fmt.Errorf("sheets client is closed")
	}
	return c.svc, nil
}

// values reads the cells of an A1 range
func (c *Client) values(ctx context.Context, a1Range string) ([][]interface{}, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// appendValues appends rows after the last row of the table found in a1Range
func (c *Client) appendValues(ctx context.Context, a1Range string, rows [][]interface{}) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.Values.Append(c.spreadsheetID, a1Range, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// quoteSheet turns a tab title into an A1 sheet reference
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// cell returns the i-th cell of row as text, "" when the row is shorter
func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprint(row[i])
}
