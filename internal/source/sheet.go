package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/visitlog/analytics-backend-go/internal/models"
	"github.com/visitlog/analytics-backend-go/internal/spatial"
)

// Column names required in the sheet's CSV export, after normalization.
// ip, region and isp were added to the logging script later and stay
// optional so older sheets keep working.
var requiredColumns = []string{"timestamp", "country", "device", "browser", "lat", "lon"}

// timestampLayouts are the raw timestamp formats the logging script has
// produced over time, tried in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

// SheetClient fetches visit records from a published spreadsheet CSV export.
// It is read-only; construct once at startup and share.
type SheetClient struct {
	url      string
	client   *http.Client
	location *time.Location
}

// NewSheetClient creates a sheet client. Raw timestamps carry no zone
// information, so they are interpreted in loc; pass time.UTC unless the
// sheet is known to be written in another fixed zone.
func NewSheetClient(url string, timeout time.Duration, loc *time.Location) *SheetClient {
	if loc == nil {
		loc = time.UTC
	}
	return &SheetClient{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		location: loc,
	}
}

// Fetch downloads and parses the sheet. Rows with an unparseable timestamp
// are kept with a zero Timestamp so categorical and geo views still see
// them; rows with the wrong field count are skipped.
func (c *SheetClient) Fetch(ctx context.Context) ([]models.VisitRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet fetch returned status %d", resp.StatusCode)
	}

	return c.Parse(resp.Body)
}

// Parse reads CSV visit rows from r. Exposed separately so imports from a
// local file share the fetch path's schema validation.
func (c *SheetClient) Parse(r io.Reader) ([]models.VisitRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length validated against the header below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("sheet is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []models.VisitRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, not a malformed batch
			continue
		}
		if len(row) < len(header) {
			continue
		}
		records = append(records, c.parseRow(row, columns))
	}
	return records, nil
}

// mapColumns normalizes header names (trimmed, lower-cased, matching the
// dashboard's historical preprocessing) and resolves the column index per
// field, failing with the full list of missing required columns.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet is missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func (c *SheetClient) parseRow(row []string, columns map[string]int) models.VisitRecord {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	record := models.VisitRecord{
		RawTimestamp: field("timestamp"),
		IP:           field("ip"),
		Country:      field("country"),
		Region:       field("region"),
		ISP:          field("isp"),
		Device:       field("device"),
		Browser:      field("browser"),
	}

	if ts, ok := c.parseTimestamp(record.RawTimestamp); ok {
		record.Timestamp = ts
	}

	lat, latErr := strconv.ParseFloat(field("lat"), 64)
	lon, lonErr := strconv.ParseFloat(field("lon"), 64)
	if latErr == nil && lonErr == nil && spatial.ValidCoordinates(lat, lon) {
		record.Latitude = &lat
		record.Longitude = &lon
	}

	return record
}

func (c *SheetClient) parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, c.location); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
