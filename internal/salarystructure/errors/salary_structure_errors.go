package salarystructureerrors

import (
	"net/http"

	"dayflow-hrms/internal/shared/apperror"
)

var (
	ErrSalaryStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active salary structure found for employee",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid effective_from, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"salary amounts must not be negative",
		http.StatusBadRequest,
	)
	ErrActiveStructureConflict = apperror.New(
		apperror.CodeConflict,
		"another salary structure was activated concurrently",
		http.StatusConflict,
	)
)
