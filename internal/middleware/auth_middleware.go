package middleware

import (
	"strings"

	autherrors "dayflow-hrms/internal/auth/errors"
	"dayflow-hrms/internal/auth/token"
	"dayflow-hrms/internal/shared/apperror"
	"dayflow-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// TokenParser verifies an access token. *token.Manager satisfies it.
type TokenParser interface {
	Parse(tokenString, expectedType string) (*token.Claims, error)
}

func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWithError(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := parser.Parse(tokenString, token.TypeAccess)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", strings.ToUpper(claims.Role))

		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
	c.Abort()
}
