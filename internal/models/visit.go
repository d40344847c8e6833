package models

import "time"

// VisitRecord represents one logged page-view event from the source sheet
type VisitRecord struct {
	ID           int64     `json:"id,omitempty" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"` // Zero when the raw value failed to parse
	RawTimestamp string    `json:"rawTimestamp,omitempty" db:"raw_timestamp"`
	IP           string    `json:"ip,omitempty" db:"ip"`
	Country      string    `json:"country" db:"country"`
	Region       string    `json:"region" db:"region"`
	ISP          string    `json:"isp" db:"isp"`
	Device       string    `json:"device" db:"device"`
	Browser      string    `json:"browser" db:"browser"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
}

// HasTimestamp reports whether the record carries a parseable timestamp
func (r *VisitRecord) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// HasLocation reports whether both coordinates are present
func (r *VisitRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// VisitsResponse represents a paginated response of visit records
type VisitsResponse struct {
	Data       []VisitRecord `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}
