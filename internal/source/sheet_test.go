package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleCSV = ` Timestamp ,IP,Country,Region,ISP,Device,Browser,Lat,Lon
2024-01-01T10:00,1.2.3.4,US,California,Comcast,mobile,Chrome,37.77,-122.41
2024-01-01T11:00,5.6.7.8,,,,desktop,Firefox,,
not-a-date,9.9.9.9,AT,Vienna,A1,mobile,Safari,48.21,16.37
`

func testClient() *SheetClient {
	return NewSheetClient("", 5*time.Second, time.UTC)
}

func TestParseSampleSheet(t *testing.T) {
	records, err := testClient().Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len: got %d, want 3", len(records))
	}

	first := records[0]
	if !first.HasTimestamp() {
		t.Error("first record should have a timestamp")
	}
	if first.Timestamp.Hour() != 10 {
		t.Errorf("hour: got %d, want 10", first.Timestamp.Hour())
	}
	if first.Country != "US" || first.ISP != "Comcast" {
		t.Errorf("unexpected fields: %+v", first)
	}
	if !first.HasLocation() {
		t.Error("first record should have coordinates")
	}
}

func TestParseHeaderNormalization(t *testing.T) {
	csv := "TIMESTAMP, Country ,device,BROWSER,lat,lon\n2024-01-01T10:00,US,mobile,Chrome,1,2\n"
	records, err := testClient().Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 || records[0].Country != "US" {
		t.Errorf("got %+v, want one US record", records)
	}
}

func TestParseKeepsRecordsWithBadTimestamp(t *testing.T) {
	records, err := testClient().Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bad := records[2]
	if bad.HasTimestamp() {
		t.Error("record with unparseable timestamp should have zero time")
	}
	if bad.RawTimestamp != "not-a-date" {
		t.Errorf("RawTimestamp: got %q", bad.RawTimestamp)
	}
	// Still usable for categorical and geo views
	if bad.Country != "AT" || !bad.HasLocation() {
		t.Errorf("unexpected fields: %+v", bad)
	}
}

func TestParseMissingCoordinates(t *testing.T) {
	records, err := testClient().Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if records[1].HasLocation() {
		t.Error("record without coordinates should have nil lat/lon")
	}
}

func TestParseMissingRequiredColumns(t *testing.T) {
	csv := "timestamp,country\n2024-01-01T10:00,US\n"
	_, err := testClient().Parse(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	for _, name := range []string{"device", "browser", "lat", "lon"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name missing column %q: %v", name, err)
		}
	}
}

func TestParseSkipsShortRows(t *testing.T) {
	csv := sampleCSV + "too,short\n"
	records, err := testClient().Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len: got %d, want 3", len(records))
	}
}

func TestParseEmptySheet(t *testing.T) {
	if _, err := testClient().Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty sheet")
	}
}

func TestParseTimestampInConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	client := NewSheetClient("", 5*time.Second, loc)
	records, err := client.Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if zone, _ := records[0].Timestamp.Zone(); zone != "JST" {
		t.Errorf("zone: got %q, want JST", zone)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	client := NewSheetClient(server.URL, 5*time.Second, time.UTC)
	records, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len: got %d, want 3", len(records))
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewSheetClient(server.URL, 5*time.Second, time.UTC)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
