// Package request holds helpers that read caller details off a gin request.
package request

import (
	"strings"

	"dayflow-hrms/internal/identity"

	"github.com/gin-gonic/gin"
)

type ClientType string

const (
	ClientWeb    ClientType = "WEB"
	ClientMobile ClientType = "MOBILE"
	ClientAPI    ClientType = "API"
)

// ResolveClientType trusts an explicit X-Client-Type header and otherwise
// guesses from the user agent.
func ResolveClientType(header, userAgent string) ClientType {
	switch strings.ToUpper(strings.TrimSpace(header)) {
	case string(ClientWeb):
		return ClientWeb
	case string(ClientMobile):
		return ClientMobile
	case string(ClientAPI):
		return ClientAPI
	}

	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mozilla"):
		return ClientWeb
	case strings.Contains(ua, "okhttp"), strings.Contains(ua, "cfnetwork"), strings.Contains(ua, "dart"):
		return ClientMobile
	default:
		return ClientAPI
	}
}

func IsWebClient(t ClientType) bool { return t == ClientWeb }

// Principal builds the authenticated caller from the keys set by the auth
// middleware.
func Principal(c *gin.Context) (identity.Principal, error) {
	return identity.NewPrincipal(c.GetString("user_id"), c.GetString("role"))
}
