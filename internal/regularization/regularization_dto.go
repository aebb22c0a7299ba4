package regularization

import "time"

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

type CreateRequest struct {
	Date              string `json:"date" binding:"required"`
	RequestedCheckIn  string `json:"requested_check_in"`
	RequestedCheckOut string `json:"requested_check_out"`
	Reason            string `json:"reason" binding:"required,max=1000"`
}

type DecideRequest struct {
	Action string `json:"action" binding:"required"`
}

type ListFilter struct {
	Status     string
	EmployeeID string
}

type RegularizationResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	Date              string     `json:"date"`
	RequestedCheckIn  *string    `json:"requested_check_in"`
	RequestedCheckOut *string    `json:"requested_check_out"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	ReviewedBy        *string    `json:"reviewed_by"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

func mapToResponse(r Regularization) RegularizationResponse {
	resp := RegularizationResponse{
		ID:                r.ID.String(),
		EmployeeID:        r.EmployeeID.String(),
		Date:              r.Date.Format(dateLayout),
		RequestedCheckIn:  r.RequestedCheckIn,
		RequestedCheckOut: r.RequestedCheckOut,
		Reason:            r.Reason,
		Status:            r.Status,
		ReviewedAt:        r.ReviewedAt,
		CreatedAt:         r.CreatedAt,
	}
	if r.ReviewedBy != nil {
		v := r.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	return resp
}

func mapToListResponse(rows []Regularization) []RegularizationResponse {
	resp := make([]RegularizationResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, mapToResponse(r))
	}
	return resp
}
