package leave

import "time"

const dateLayout = "2006-01-02"

type ApplyLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required,max=2000"`
}

type UpdateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required,max=2000"`
}

type DecideLeaveRequest struct {
	Status       string `json:"status" binding:"required"`
	AdminComment string `json:"admin_comment" binding:"max=2000"`
}

type ListFilter struct {
	Status     string
	EmployeeID string
}

type LeaveResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	LeaveType    string     `json:"leave_type"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	TotalDays    int        `json:"total_days"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	AdminComment *string    `json:"admin_comment"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	AppliedOn    time.Time  `json:"applied_on"`
	UpdatedOn    time.Time  `json:"updated_on"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:           l.ID.String(),
		EmployeeID:   l.EmployeeID.String(),
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate.Format(dateLayout),
		EndDate:      l.EndDate.Format(dateLayout),
		TotalDays:    l.TotalDays,
		Reason:       l.Reason,
		Status:       l.Status,
		AdminComment: l.AdminComment,
		DecidedAt:    l.DecidedAt,
		AppliedOn:    l.CreatedAt,
		UpdatedOn:    l.UpdatedAt,
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
