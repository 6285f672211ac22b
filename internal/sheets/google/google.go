package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"gastos/internal/sheets"

	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSpreadsheetName is the title looked up when no ID is configured.
const DefaultSpreadsheetName = "Personal"

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SpreadsheetName string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// Client is a row store where every table is a worksheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu     sync.Mutex
	titles map[string]bool
}

// Ensure interface conformance
var _ sheets.Store = (*Client)(nil)

// ConfigFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_SPREADSHEET_NAME,
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE and
// GOOGLE_APPLICATION_CREDENTIALS.
func ConfigFromEnv() Config {
	cfg := Config{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SpreadsheetName: strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_NAME")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return cfg
}

// New connects to Sheets with service account credentials. When no
// spreadsheet ID is configured the spreadsheet is looked up by title
// through Drive. Extra options are appended to the credential options.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	credOpts, err := credentialOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(credOpts, opts...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		drv, err := gdrive.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create drive service: %w", err)
		}
		name := cfg.SpreadsheetName
		if name == "" {
			name = DefaultSpreadsheetName
		}
		id, err = ResolveSpreadsheetID(ctx, drv, name)
		if err != nil {
			return nil, err
		}
	}
	slog.InfoContext(ctx, "Google Sheets row store ready", "spreadsheet_id", id)
	return NewWithService(svc, id), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func credentialOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope, gdrive.DriveReadonlyScope),
	}, nil
}

// ResolveSpreadsheetID finds a spreadsheet visible to the service account
// by its exact title.
func ResolveSpreadsheetID(ctx context.Context, drv *gdrive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`))
	resp, err := drv.Files.List().Q(q).Fields("files(id, name)").PageSize(10).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("look up spreadsheet %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	}
	if len(resp.Files) > 1 {
		slog.WarnContext(ctx, "Several spreadsheets share the title, using the first", "name", name, "count", len(resp.Files))
	}
	return resp.Files[0].Id, nil
}

func (c *Client) Table(ctx context.Context, name string) (sheets.Table, error) {
	ok, err := c.sheetExists(ctx, name)
	if err != nil {
		return sheets.Table{}, err
	}
	if !ok {
		return sheets.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quote(name)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return sheets.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	out := sheets.Table{Name: name}
	if len(resp.Values) == 0 {
		return out, nil
	}
	out.Header = toStrings(resp.Values[0])
	for _, row := range resp.Values[1:] {
		cells := toStrings(row)
		if sheets.IsBlank(cells) {
			continue
		}
		out.Records = append(out.Records, sheets.RecordFrom(out.Header, cells))
	}
	return out, nil
}

func (c *Client) Append(ctx context.Context, name string, rec sheets.Record) error {
	header, err := c.ensureTable(ctx, name)
	if err != nil {
		return err
	}
	return c.appendRow(ctx, name, header, rec)
}

// ClearAndRewrite clears the worksheet, writes the canonical header and
// appends each record with its own call.
func (c *Client) ClearAndRewrite(ctx context.Context, name string, recs []sheets.Record) error {
	if _, err := c.ensureTable(ctx, name); err != nil {
		return err
	}
	header, _ := sheets.HeaderFor(name)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quote(name), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if err := c.writeHeader(ctx, name, header); err != nil {
		return err
	}
	for i, rec := range recs {
		if err := c.appendRow(ctx, name, header, rec); err != nil {
			return fmt.Errorf("rewrite %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

func (c *Client) appendRow(ctx context.Context, name string, header []string, rec sheets.Record) error {
	vr := &gsheet.ValueRange{Values: [][]any{cellsFor(header, rec)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quote(name)+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return nil
}

// ensureTable creates the worksheet with its canonical header when missing
// and returns the header to lay rows out with.
func (c *Client) ensureTable(ctx context.Context, name string) ([]string, error) {
	canonical, err := sheets.HeaderFor(name)
	if err != nil {
		return nil, err
	}
	ok, err := c.sheetExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := c.addSheet(ctx, name); err != nil {
			return nil, err
		}
		if err := c.writeHeader(ctx, name, canonical); err != nil {
			return nil, err
		}
		return canonical, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quote(name)+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	if len(resp.Values) == 0 || sheets.IsBlank(toStrings(resp.Values[0])) {
		if err := c.writeHeader(ctx, name, canonical); err != nil {
			return nil, err
		}
		return canonical, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (c *Client) writeHeader(ctx context.Context, name string, header []string) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quote(name)+"!A1", &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	return nil
}

func (c *Client) addSheet(ctx context.Context, name string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create worksheet %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Created worksheet", "sheet", name)
	c.mu.Lock()
	if c.titles != nil {
		c.titles[name] = true
	}
	c.mu.Unlock()
	return nil
}

// sheetExists loads the worksheet titles once per client.
func (c *Client) sheetExists(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.titles == nil {
		ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return false, fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
		}
		titles := make(map[string]bool, len(ss.Sheets))
		for _, sh := range ss.Sheets {
			if sh.Properties != nil {
				titles[sh.Properties.Title] = true
			}
		}
		c.titles = titles
	}
	return c.titles[name], nil
}

// cellsFor lays rec out following header. Amount columns go out as numbers
// so the spreadsheet can sum them; everything else stays text.
func cellsFor(header []string, rec sheets.Record) []any {
	values := sheets.RowValues(header, rec)
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
		if sheets.IsNumericColumn(header[i]) {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64); err == nil {
				out[i] = f
			}
		}
	}
	return out
}

func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
