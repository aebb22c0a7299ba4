package payrollerrors

import (
	"net/http"

	"dayflow-hrms/internal/shared/apperror"
)

var (
	ErrInvalidPayrollID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidMonthFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid month format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodFilter = apperror.New(
		apperror.CodeInvalidInput,
		"month filter requires year and must be between 1 and 12",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of DRAFT, PROCESSED, PAID",
		http.StatusBadRequest,
	)
	ErrInvalidMoneyValue = apperror.New(
		apperror.CodeInvalidInput,
		"salary figures cannot be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found or inactive",
		http.StatusNotFound,
	)
	ErrSalaryStructureNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active salary structure found for employee",
		http.StatusNotFound,
	)
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrPayrollExists = apperror.New(
		apperror.CodeConflict,
		"payroll already exists for this employee and month",
		http.StatusConflict,
	)
	ErrPayrollPaid = apperror.New(
		apperror.CodeConflict,
		"paid payroll cannot be modified",
		http.StatusConflict,
	)

	ErrInvalidComponentType = apperror.New(
		apperror.CodeInvalidInput,
		"component_type must be ALLOWANCE or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrComponentExists = apperror.New(
		apperror.CodeConflict,
		"payroll component with this name already exists",
		http.StatusConflict,
	)
)
