package user

type CreateUserRequest struct {
	Username      string `json:"username" binding:"required,min=3,max=150"`
	Email         string `json:"email" binding:"required,email"`
	EmployeeID    string `json:"employee_id" binding:"required,max=50"`
	Password      string `json:"password" binding:"required,min=8"`
	Role          string `json:"role"`
	FullName      string `json:"full_name" binding:"required"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	JobTitle      string `json:"job_title"`
	Department    string `json:"department"`
	DateOfJoining string `json:"date_of_joining" binding:"omitempty,datetime=2006-01-02"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateProfileRequest is a partial update; nil fields are left alone.
// Employees editing their own profile may only change phone and address.
type UpdateProfileRequest struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	JobTitle      *string `json:"job_title"`
	Department    *string `json:"department"`
	DateOfJoining *string `json:"date_of_joining"`
}

type ListFilter struct {
	Role   string
	Active *bool
	Query  string
}

type ProfileResponse struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	JobTitle      string `json:"job_title"`
	Department    string `json:"department"`
	DateOfJoining string `json:"date_of_joining,omitempty"`
}

type UserResponse struct {
	ID         string           `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	EmployeeID string           `json:"employee_id"`
	Role       string           `json:"role"`
	IsActive   bool             `json:"is_active"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

func mapProfile(p *EmployeeProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	resp := &ProfileResponse{
		FullName:   p.FullName,
		Phone:      p.Phone,
		Address:    p.Address,
		JobTitle:   p.JobTitle,
		Department: p.Department,
	}
	if p.DateOfJoining != nil {
		resp.DateOfJoining = p.DateOfJoining.Format(dateLayout)
	}
	return resp
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		EmployeeID: u.EmployeeCode,
		Role:       u.Role,
		IsActive:   u.IsActive,
		Profile:    mapProfile(u.Profile),
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
