package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/visitlog/analytics-backend-go/internal/database"
	"github.com/visitlog/analytics-backend-go/internal/models"
)

// VisitRepository handles database operations for the visit cache
type VisitRepository struct {
	db       *sql.DB
	location *time.Location
}

// NewVisitRepository creates a new visit repository. Cached timestamps are
// stored as unix seconds and rebuilt in loc on read.
func NewVisitRepository(db *sql.DB, loc *time.Location) *VisitRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &VisitRepository{db: db, location: loc}
}

// ReplaceAll replaces the whole cache with the given batch in one
// transaction and records the fetch. Views carry no incremental state, so
// every refresh rewrites the cache from scratch.
func (r *VisitRepository) ReplaceAll(records []models.VisitRecord) error {
	return database.TransactionOn(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM visits"); err != nil {
			return fmt.Errorf("failed to clear visit cache: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO visits
			(timestamp, raw_timestamp, ip, country, region, isp, device, browser, latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare visit insert: %w", err)
		}
		defer stmt.Close()

		for i := range records {
			rec := &records[i]

			var ts sql.NullInt64
			if rec.HasTimestamp() {
				ts = sql.NullInt64{Int64: rec.Timestamp.Unix(), Valid: true}
			}
			var lat, lon sql.NullFloat64
			if rec.HasLocation() {
				lat = sql.NullFloat64{Float64: *rec.Latitude, Valid: true}
				lon = sql.NullFloat64{Float64: *rec.Longitude, Valid: true}
			}

			if _, err := stmt.Exec(ts, rec.RawTimestamp, rec.IP, rec.Country, rec.Region,
				rec.ISP, rec.Device, rec.Browser, lat, lon); err != nil {
				return fmt.Errorf("failed to insert visit: %w", err)
			}
		}

		if _, err := tx.Exec("INSERT INTO fetch_log (fetched_at, row_count) VALUES (?, ?)",
			time.Now().Unix(), len(records)); err != nil {
			return fmt.Errorf("failed to record fetch: %w", err)
		}
		return nil
	})
}

// Find retrieves all visits matching the filter, ignoring pagination
func (r *VisitRepository) Find(filter models.VisitFilter) ([]models.VisitRecord, error) {
	whereClause, args, err := r.buildWhere(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, timestamp, raw_timestamp, ip, country, region, isp, device, browser,
		latitude, longitude FROM visits` + whereClause + ` ORDER BY timestamp IS NULL, timestamp, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	return r.scanVisits(rows)
}

// List retrieves visits matching the filter with pagination
func (r *VisitRepository) List(filter models.VisitFilter, defaultPageSize int) (*models.VisitsResponse, error) {
	whereClause, args, err := r.buildWhere(filter)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM visits"+whereClause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	query := `SELECT id, timestamp, raw_timestamp, ip, country, region, isp, device, browser,
		latitude, longitude FROM visits` + whereClause + `
		ORDER BY timestamp IS NULL, timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	visits, err := r.scanVisits(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.VisitsResponse{
		Data:       visits,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// LastFetch returns when the cache was last refreshed and with how many rows
func (r *VisitRepository) LastFetch() (time.Time, int, error) {
	var fetchedAt int64
	var rowCount int
	err := r.db.QueryRow(
		"SELECT fetched_at, row_count FROM fetch_log ORDER BY id DESC LIMIT 1",
	).Scan(&fetchedAt, &rowCount)
	if err == sql.ErrNoRows {
		return time.Time{}, 0, nil
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to query fetch log: %w", err)
	}
	return time.Unix(fetchedAt, 0).In(r.location), rowCount, nil
}

func (r *VisitRepository) buildWhere(filter models.VisitFilter) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	if filter.StartDate != "" {
		start, err := time.ParseInLocation(models.DateFormat, filter.StartDate, r.location)
		if err != nil {
			return "", nil, fmt.Errorf("invalid startDate %q: %w", filter.StartDate, err)
		}
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, start.Unix())
	}
	if filter.EndDate != "" {
		end, err := time.ParseInLocation(models.DateFormat, filter.EndDate, r.location)
		if err != nil {
			return "", nil, fmt.Errorf("invalid endDate %q: %w", filter.EndDate, err)
		}
		// Inclusive end date
		conditions = append(conditions, "timestamp < ?")
		args = append(args, end.AddDate(0, 0, 1).Unix())
	}
	if filter.Country != "" {
		conditions = append(conditions, "country = ?")
		args = append(args, filter.Country)
	}
	if filter.Device != "" {
		conditions = append(conditions, "device = ?")
		args = append(args, filter.Device)
	}
	if filter.Browser != "" {
		conditions = append(conditions, "browser = ?")
		args = append(args, filter.Browser)
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func (r *VisitRepository) scanVisits(rows *sql.Rows) ([]models.VisitRecord, error) {
	var visits []models.VisitRecord
	for rows.Next() {
		var rec models.VisitRecord
		var ts sql.NullInt64
		var lat, lon sql.NullFloat64

		if err := rows.Scan(&rec.ID, &ts, &rec.RawTimestamp, &rec.IP, &rec.Country,
			&rec.Region, &rec.ISP, &rec.Device, &rec.Browser, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		if ts.Valid {
			rec.Timestamp = time.Unix(ts.Int64, 0).In(r.location)
		}
		if lat.Valid && lon.Valid {
			rec.Latitude = &lat.Float64
			rec.Longitude = &lon.Float64
		}
		visits = append(visits, rec)
	}
	return visits, rows.Err()
}
