// Package identity holds the role model and ownership checks shared by every
// feature. It has no storage of its own.
package identity

import (
	"net/http"
	"strings"

	"dayflow-hrms/internal/shared/apperror"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "ADMIN"
	RoleHR       = "HR"
	RoleEmployee = "EMPLOYEE"
)

// ApproverRoles are the roles that review leave and regularization requests.
var ApproverRoles = []string{RoleHR, RoleAdmin}

var (
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be one of ADMIN, HR, EMPLOYEE",
		http.StatusBadRequest,
	)
	ErrInvalidPrincipal = apperror.New(
		apperror.CodeUnauthorized,
		"invalid authenticated principal",
		http.StatusUnauthorized,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)
)

func NormalizeRole(role string) (string, error) {
	r := strings.ToUpper(strings.TrimSpace(role))
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func NewPrincipal(userID, role string) (Principal, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Principal{}, ErrInvalidPrincipal
	}
	r, err := NormalizeRole(role)
	if err != nil {
		return Principal{}, ErrInvalidPrincipal
	}
	return Principal{UserID: id, Role: r}, nil
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsPrivileged is true for roles that may act on other users' records.
func (p Principal) IsPrivileged() bool {
	return p.Role == RoleAdmin || p.Role == RoleHR
}
