package dashboard

import "time"

type AttendanceSnapshot struct {
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	WorkingHours *string    `json:"working_hours"`
	IsLate       bool       `json:"is_late"`
}

type PayrollSnapshot struct {
	ID          string  `json:"id"`
	Month       string  `json:"month"`
	Status      string  `json:"status"`
	NetSalary   string  `json:"net_salary"`
	PaymentDate *string `json:"payment_date"`
}

type PersonalResponse struct {
	Date                string              `json:"date"`
	TodayAttendance     *AttendanceSnapshot `json:"today_attendance"`
	PendingLeaves       int64               `json:"pending_leaves"`
	CurrentPayroll      *PayrollSnapshot    `json:"current_payroll"`
	UnreadNotifications int64               `json:"unread_notifications"`
}

type HRResponse struct {
	Date                string `json:"date"`
	TotalEmployees      int64  `json:"total_employees"`
	PresentToday        int64  `json:"present_today"`
	HalfDayToday        int64  `json:"half_day_today"`
	OnLeaveToday        int64  `json:"on_leave_today"`
	AbsentToday         int64  `json:"absent_today"`
	PendingLeaves       int64  `json:"pending_leaves"`
	PayrollsThisMonth   int64  `json:"payrolls_this_month"`
	PayrollNetThisMonth string `json:"payroll_net_this_month"`
}
