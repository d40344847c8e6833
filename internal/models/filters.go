package models

// VisitFilter represents filter parameters for querying visit records.
// Dates are calendar dates in the configured timezone, format 2006-01-02.
type VisitFilter struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Country   string `form:"country"`
	Device    string `form:"device"`
	Browser   string `form:"browser"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// IsZero reports whether no filter fields are set
func (f VisitFilter) IsZero() bool {
	return f.StartDate == "" && f.EndDate == "" &&
		f.Country == "" && f.Device == "" && f.Browser == ""
}
