package regularizationerrors

import (
	"dayflow-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrRegularizationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Regularization request not found",
		http.StatusNotFound,
	)

	ErrInvalidRegularizationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid regularization ID",
		http.StatusBadRequest,
	)

	ErrAlreadyProcessed = apperror.New(
		apperror.CodeConflict,
		"Regularization request has already been processed",
		http.StatusConflict,
	)

	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"Action must be approve or reject",
		http.StatusBadRequest,
	)

	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Status must be PENDING, APPROVED or REJECTED",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Date must use YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidClock = apperror.New(
		apperror.CodeInvalidInput,
		"Requested times must use HH:MM or HH:MM:SS",
		http.StatusBadRequest,
	)

	ErrMissingTimes = apperror.New(
		apperror.CodeInvalidInput,
		"At least one of requested_check_in or requested_check_out is required",
		http.StatusBadRequest,
	)

	ErrCheckOutBeforeCheckIn = apperror.New(
		apperror.CodeInvalidInput,
		"Requested check-out cannot be earlier than requested check-in",
		http.StatusBadRequest,
	)

	ErrAttendanceConflict = apperror.New(
		apperror.CodeConflict,
		"Attendance for this date was recorded concurrently, retry the decision",
		http.StatusConflict,
	)
)

var ErrFutureDate = apperror.New(
	apperror.CodeInvalidInput,
	"Regularization date cannot be in the future",
	http.StatusBadRequest,
)

var ErrInvalidEmployeeID = apperror.New(
	apperror.CodeInvalidInput,
	"Invalid employee ID",
	http.StatusBadRequest,
)
