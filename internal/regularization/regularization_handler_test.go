package regularization_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/regularization"
	regularizationerrors "dayflow-hrms/internal/regularization/errors"
	regularizationMock "dayflow-hrms/internal/regularization/mock"

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

func TestHandler_Create(t *testing.T) {
	userID := uuid.New()
	p := identity.Principal{UserID: userID, Role: identity.RoleEmployee}

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := regularizationMock.NewMockService(ctrl)
		h := regularization.NewHandler(svc)

		req := regularization.CreateRequest{Date: "2026-01-12", RequestedCheckIn: "09:00", Reason: "badge reader down"}
		svc.EXPECT().Create(gomock.Any(), p, req).
			Return(regularization.RegularizationResponse{ID: "r1", Status: regularization.StatusPending}, nil)

		c, w := newContext(http.MethodPost, "/attendance/regularizations",
			`{"date":"2026-01-12","requested_check_in":"09:00","reason":"badge reader down"}`, userID, identity.RoleEmployee)
		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Ok)
	})

	t.Run("missing reason", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := regularizationMock.NewMockService(ctrl)
		h := regularization.NewHandler(svc)

		c, w := newContext(http.MethodPost, "/attendance/regularizations", `{"date":"2026-01-12"}`, userID, identity.RoleEmployee)
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestHandler_Decide(t *testing.T) {
	reviewerID := uuid.New()
	p := identity.Principal{UserID: reviewerID, Role: identity.RoleHR}
	id := uuid.NewString()

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"approved", nil, http.StatusOK, ""},
		{"already processed", regularizationerrors.ErrAlreadyProcessed, http.StatusConflict, "CONFLICT"},
		{"invalid action", regularizationerrors.ErrInvalidAction, http.StatusBadRequest, "INVALID_INPUT"},
		{"not found", regularizationerrors.ErrRegularizationNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := regularizationMock.NewMockService(ctrl)
			h := regularization.NewHandler(svc)

			svc.EXPECT().Decide(gomock.Any(), p, id, "approve").
				Return(regularization.RegularizationResponse{ID: id, Status: regularization.StatusApproved}, tc.err)

			c, w := newContext(http.MethodPost, "/attendance/regularizations/"+id+"/decide", `{"action":"approve"}`, reviewerID, identity.RoleHR)
			c.Params = gin.Params{{Key: "id", Value: id}}
			h.Decide(c)

			assert.Equal(t, tc.wantCode, w.Code)
			env := decodeEnvelope(t, w)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, env.Error.Code)
			} else {
				assert.True(t, env.Ok)
			}
		})
	}
}
