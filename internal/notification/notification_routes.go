package notification

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	self := middleware.RBACAuthorize(rbacService, rbac.ResourceNotification, rbac.ActionSelf)
	broadcast := middleware.RBACAuthorize(rbacService, rbac.ResourceNotification, rbac.ActionBroadcast)

	notifications := r.Group("/notifications")
	{
		notifications.GET("", self, handler.List)
		notifications.GET("/stats", self, handler.Stats)
		notifications.POST("/mark-all-read", self, handler.MarkAllRead)
		notifications.GET("/preferences", self, handler.GetPreferences)
		notifications.PUT("/preferences", self, handler.UpdatePreferences)
		notifications.GET("/:id", self, handler.GetByID)
		notifications.PATCH("/:id", self, handler.Update)
		notifications.DELETE("/:id", self, handler.Delete)

		notifications.POST("", broadcast, middleware.RateLimitByUser(1, 5), handler.Create)
		notifications.POST("/broadcast", broadcast, middleware.RateLimitByUser(0.2, 2), handler.Broadcast)
	}
}
