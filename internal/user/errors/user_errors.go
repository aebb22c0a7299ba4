package usererrors

import (
	"dayflow-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"A user with the same username, email or employee ID already exists",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Date must use YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee profile not found",
		http.StatusNotFound,
	)

	ErrAdminRoleRequired = apperror.New(
		apperror.CodeForbidden,
		"Only ADMIN can grant or change the ADMIN role",
		http.StatusForbidden,
	)

	ErrCannotDeactivateSelf = apperror.New(
		apperror.CodeInvalidInput,
		"You cannot deactivate your own account",
		http.StatusBadRequest,
	)

	ErrRestrictedProfileField = apperror.New(
		apperror.CodeForbidden,
		"Employees may only update phone and address",
		http.StatusForbidden,
	)
)
