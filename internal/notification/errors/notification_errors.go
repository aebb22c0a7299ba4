package notificationerrors

import (
	"dayflow-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Notification not found",
		http.StatusNotFound,
	)

	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid notification ID",
		http.StatusBadRequest,
	)

	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid notification type",
		http.StatusBadRequest,
	)

	ErrInvalidPriority = apperror.New(
		apperror.CodeInvalidInput,
		"Priority must be one of LOW, MEDIUM, HIGH, URGENT",
		http.StatusBadRequest,
	)

	ErrInvalidRecipientID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid recipient ID",
		http.StatusBadRequest,
	)

	ErrInvalidRelatedObjectID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid related object ID",
		http.StatusBadRequest,
	)

	ErrRecipientNotFound = apperror.New(
		apperror.CodeNotFound,
		"Recipient not found",
		http.StatusNotFound,
	)
)
