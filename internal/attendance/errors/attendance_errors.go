package attendanceerrors

import (
	"dayflow-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"Already checked in today",
		http.StatusConflict,
	)

	ErrCheckInNotFound = apperror.New(
		apperror.CodeNotFound,
		"No check-in found for today",
		http.StatusNotFound,
	)

	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeConflict,
		"Already checked out today",
		http.StatusConflict,
	)

	ErrCheckOutBeforeCheckIn = apperror.New(
		apperror.CodeInvalidInput,
		"Check-out time cannot be earlier than check-in time",
		http.StatusBadRequest,
	)

	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)

	ErrInvalidAttendanceID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid attendance ID",
		http.StatusBadRequest,
	)

	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)

	ErrInvalidClock = apperror.New(
		apperror.CodeInvalidInput,
		"Time must use HH:MM or HH:MM:SS",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Date must use YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from must not be after to",
		http.StatusBadRequest,
	)

	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be 1-12 and year must be a valid year",
		http.StatusBadRequest,
	)
)
