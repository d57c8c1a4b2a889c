package service

import (
	"strconv"
	"time"

	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/validator"
)

const dateLayout = "2006-01-02"

// PeriodQuery selects a dashboard window:
//
//	period=daily&date=2025-01-21
//	period=monthly&month=1&year=2025
//	period=yearly&year=2025
//	startDate=2025-01-01&endDate=2025-03-31
//
// Missing date, month or year default to the current one.
type PeriodQuery struct {
	Period    string `query:"period" validate:"omitempty,oneof=daily monthly yearly"`
	Date      string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Month     int    `query:"month" validate:"omitempty,min=1,max=12"`
	Year      int    `query:"year" validate:"omitempty,min=2000,max=2100"`
	StartDate string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Range resolves q in loc relative to now.
func (q *PeriodQuery) Range(now time.Time, loc *time.Location) (Window, error) {
	if err := validator.Struct(q); err != nil {
		return Window{}, err
	}
	if (q.StartDate == "") != (q.EndDate == "") {
		return Window{}, fieldRequired("startDate and endDate must be given together", "endDate")
	}
	if q.Period == "" && q.StartDate == "" {
		return Window{}, fieldRequired("Validation failed on field 'period'", "period")
	}
	now = now.In(loc)
	year, month, day := now.Date()
	if q.Year != 0 {
		year = q.Year
	}
	if q.Month != 0 {
		month = time.Month(q.Month)
	}

	if q.StartDate != "" {
		start, _ := time.ParseInLocation(dateLayout, q.StartDate, loc)
		end, _ := time.ParseInLocation(dateLayout, q.EndDate, loc)
		end = end.AddDate(0, 0, 1)
		if !end.After(start) {
			return Window{}, apperr.BadRequest("endDate must not be before startDate")
		}
		return Window{Start: start, End: end}, nil
	}

	switch q.Period {
	case "daily":
		start := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, loc)
		if q.Date != "" {
			start, _ = time.ParseInLocation(dateLayout, q.Date, loc)
		}
		return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case "monthly":
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	default:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(1, 0, 0)}, nil
	}
}

func fieldRequired(message, field string) error {
	return apperr.Validation(message, []*validator.ErrorResponse{{FailedField: field, Tag: "required"}})
}

// cacheKey names a cached rollup for this window.
func (w Window) cacheKey(name string) string {
	return "dashboard:" + name + ":" + strconv.FormatInt(w.Start.Unix(), 10) + ":" + strconv.FormatInt(w.End.Unix(), 10)
}

// MonthQuery is the optional month filter of the sales performance views.
type MonthQuery struct {
	Month int `query:"month" validate:"omitempty,min=1,max=12"`
	Year  int `query:"year" validate:"omitempty,min=2000,max=2100"`
}

func (q *MonthQuery) validate() error {
	if err := validator.Struct(q); err != nil {
		return err
	}
	if (q.Month == 0) != (q.Year == 0) {
		return fieldRequired("month and year must be given together", "year")
	}
	return nil
}

func (q *MonthQuery) monthly() bool {
	return q.Month != 0 && q.Year != 0
}

func (q *MonthQuery) window(loc *time.Location) Window {
	start := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// PeriodInfo describes the window a sales performance view covers.
type PeriodInfo struct {
	Type  string     `json:"type"`
	Month int        `json:"month,omitempty"`
	Year  int        `json:"year,omitempty"`
	Since *time.Time `json:"since,omitempty"`
}
