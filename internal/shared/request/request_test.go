package request

import (
	"net/http/httptest"
	"testing"

	"dayflow-hrms/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveClientType(t *testing.T) {
	assert.Equal(t, ClientMobile, ResolveClientType("mobile", "Mozilla/5.0"))
	assert.Equal(t, ClientWeb, ResolveClientType("", "Mozilla/5.0 (X11; Linux x86_64)"))
	assert.Equal(t, ClientMobile, ResolveClientType("", "okhttp/4.9.0"))
	assert.Equal(t, ClientAPI, ResolveClientType("", "curl/8.0"))
}

func TestPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := Principal(c)
	assert.ErrorIs(t, err, identity.ErrInvalidPrincipal)

	id := uuid.New()
	c.Set("user_id", id.String())
	c.Set("role", "hr")
	p, err := Principal(c)
	assert.NoError(t, err)
	assert.Equal(t, id, p.UserID)
	assert.Equal(t, identity.RoleHR, p.Role)
}
