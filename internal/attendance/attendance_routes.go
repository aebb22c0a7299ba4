package attendance

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	self := middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionSelf)
	readAll := middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionReadAll)

	attendance := r.Group("/attendance")
	{
		attendance.POST("/check-in", self, middleware.RateLimitByUser(1, 3), handler.CheckIn)
		attendance.POST("/check-out", self, middleware.RateLimitByUser(1, 3), handler.CheckOut)
		attendance.GET("/today", self, handler.Today)
		attendance.GET("/my", self, handler.My)
		attendance.GET("/summary", self, handler.Summary)
		attendance.GET("", readAll, handler.List)
		attendance.GET("/:id", self, handler.GetByID)
	}
}
