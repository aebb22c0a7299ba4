package leave_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/leave"
	leaveerrors "dayflow-hrms/internal/leave/errors"
	leaveMock "dayflow-hrms/internal/leave/mock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newContext(method, target, body string, userID uuid.UUID, role string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID.String())
	c.Set("role", role)
	return c, w
}

func TestHandler_Apply(t *testing.T) {
	userID := uuid.New()
	p := identity.Principal{UserID: userID, Role: identity.RoleEmployee}

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		h := leave.NewHandler(svc)

		req := leave.ApplyLeaveRequest{LeaveType: "paid", StartDate: "2026-01-12", EndDate: "2026-01-12", Reason: "errand"}
		svc.EXPECT().Apply(gomock.Any(), p, req).
			Return(leave.LeaveResponse{ID: "l1", LeaveType: leave.TypePaid, Status: leave.StatusPending}, nil)

		c, w := newContext(http.MethodPost, "/leaves",
			`{"leave_type":"paid","start_date":"2026-01-12","end_date":"2026-01-12","reason":"errand"}`, userID, identity.RoleEmployee)
		h.Apply(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var data leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
		assert.Equal(t, leave.TypePaid, data.LeaveType)
	})

	t.Run("invalid range is 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		h := leave.NewHandler(svc)

		svc.EXPECT().Apply(gomock.Any(), p, gomock.Any()).Return(leave.LeaveResponse{}, leaveerrors.ErrInvalidDateRange)

		c, w := newContext(http.MethodPost, "/leaves",
			`{"leave_type":"PAID","start_date":"2026-01-12","end_date":"2026-01-10","reason":"x"}`, userID, identity.RoleEmployee)
		h.Apply(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		h := leave.NewHandler(svc)

		c, w := newContext(http.MethodPost, "/leaves", `{"leave_type":"PAID"}`, userID, identity.RoleEmployee)
		h.Apply(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
	})
}

func TestHandler_List_Paginates(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	h := leave.NewHandler(svc)

	rows := make([]leave.LeaveResponse, 15)
	svc.EXPECT().List(gomock.Any(), leave.ListFilter{Status: "PENDING"}).Return(rows, nil)

	c, w := newContext(http.MethodGet, "/leaves?status=PENDING&page=2&page_size=10", "", uuid.New(), identity.RoleHR)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var data []leave.LeaveResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 5)
	assert.NotEmpty(t, env.Meta)
}

func TestHandler_DecideAndCancel(t *testing.T) {
	id := uuid.NewString()

	t.Run("decide conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		h := leave.NewHandler(svc)
		approverID := uuid.New()

		svc.EXPECT().Decide(gomock.Any(), identity.Principal{UserID: approverID, Role: identity.RoleHR}, id,
			leave.DecideLeaveRequest{Status: "APPROVED", AdminComment: "ok"}).
			Return(leave.LeaveResponse{}, leaveerrors.ErrAlreadyProcessed)

		c, w := newContext(http.MethodPost, "/leaves/"+id+"/decide", `{"status":"APPROVED","admin_comment":"ok"}`, approverID, identity.RoleHR)
		c.Params = gin.Params{{Key: "id", Value: id}}
		h.Decide(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		h := leave.NewHandler(svc)
		ownerID := uuid.New()
		comment := leave.CancelledComment

		svc.EXPECT().Cancel(gomock.Any(), identity.Principal{UserID: ownerID, Role: identity.RoleEmployee}, id).
			Return(leave.LeaveResponse{ID: id, Status: leave.StatusPending, AdminComment: &comment}, nil)

		c, w := newContext(http.MethodPost, "/leaves/"+id+"/cancel", "", ownerID, identity.RoleEmployee)
		c.Params = gin.Params{{Key: "id", Value: id}}
		h.Cancel(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var data leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
		assert.Equal(t, leave.CancelledComment, *data.AdminComment)
	})
}
