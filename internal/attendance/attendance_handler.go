package attendance

import (
	"net/http"
	"strconv"
	"time"

	"dayflow-hrms/internal/shared/apperror"
	"dayflow-hrms/internal/shared/request"
	"dayflow-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func writeBindError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", httpErr.Message, err.Error())
}

// bindOptional accepts an empty body as the zero request.
func bindOptional(c *gin.Context, req any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(req)
}

func (h *Handler) CheckIn(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var req CheckInRequest
	if err := bindOptional(c, &req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), p, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var req CheckOutRequest
	if err := bindOptional(c, &req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), p, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Today(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.service.Today(c.Request.Context(), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) My(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), p, ListFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), ListFilter{
		EmployeeID: c.Query("employee_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Summary defaults to the current month.
func (h *Handler) Summary(c *gin.Context) {
	p, err := request.Principal(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	now := time.Now()
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		writeServiceError(c, apperror.InvalidField("month"))
		return
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		writeServiceError(c, apperror.InvalidField("year"))
		return
	}

	resp, err := h.service.MonthlySummary(c.Request.Context(), p, c.Query("employee_id"), month, year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
