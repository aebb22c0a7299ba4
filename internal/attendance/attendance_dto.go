package attendance

import (
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

type CheckInRequest struct {
	CheckInTime string `json:"check_in_time"`
	Notes       string `json:"notes"`
}

type CheckOutRequest struct {
	CheckOutTime string `json:"check_out_time"`
	Notes        string `json:"notes"`
}

type ListFilter struct {
	EmployeeID string
	From       string
	To         string
}

type AttendanceResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	Date             string  `json:"date"`
	CheckInTime      *string `json:"check_in_time"`
	CheckOutTime     *string `json:"check_out_time"`
	Status           string  `json:"status"`
	IsLate           bool    `json:"is_late"`
	IsEarlyDeparture bool    `json:"is_early_departure"`
	WorkingHours     *string `json:"working_hours"`
	OvertimeHours    *string `json:"overtime_hours"`
	Notes            string  `json:"notes,omitempty"`
}

type SummaryResponse struct {
	EmployeeID string         `json:"employee_id"`
	Month      int            `json:"month"`
	Year       int            `json:"year"`
	Summary    MonthlySummary `json:"summary"`
}

func formatClock(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	v := t.In(loc).Format(clockLayout)
	return &v
}

func mapToResponse(r Record, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               r.ID.String(),
		EmployeeID:       r.EmployeeID.String(),
		Date:             r.Date.Format(dateLayout),
		CheckInTime:      formatClock(r.CheckInTime, loc),
		CheckOutTime:     formatClock(r.CheckOutTime, loc),
		Status:           r.Status,
		IsLate:           r.IsLate,
		IsEarlyDeparture: r.IsEarlyDeparture,
		Notes:            r.Notes,
	}
	if r.WorkingHours.Valid {
		v := r.WorkingHours.Decimal.StringFixed(2)
		resp.WorkingHours = &v
	}
	if r.OvertimeHours.Valid {
		v := r.OvertimeHours.Decimal.StringFixed(2)
		resp.OvertimeHours = &v
	}
	return resp
}

func mapToListResponse(rows []Record, loc *time.Location) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r, loc)
	}
	return res
}
