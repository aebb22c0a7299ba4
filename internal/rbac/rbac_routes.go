package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to be behind the auth middleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.GET("/permissions", handler.MyPermissions)
		group.POST("/check", handler.Check)
	}
}
