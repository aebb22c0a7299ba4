package payroll

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts /payrolls and /payroll-components. A nil rdb serves
// generate without Idempotency-Key replay.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb redis.Cmdable,
) {
	self := middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionSelf)
	manage := middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionManage)

	generate := []gin.HandlerFunc{manage, middleware.RateLimitByUser(1, 10)}
	if rdb != nil {
		generate = append(generate, middleware.Idempotency(rdb))
	}
	generate = append(generate, handler.Generate)

	payrolls := r.Group("/payrolls")
	{
		payrolls.POST("/generate", generate...)
		payrolls.POST("", manage, handler.Create)
		payrolls.GET("/my", self, handler.My)
		payrolls.GET("/summary", manage, handler.Summary)
		payrolls.GET("", manage, handler.List)
		payrolls.GET("/:id", self, handler.GetByID)
		payrolls.GET("/:id/payslip", self, handler.DownloadPayslip)
		payrolls.PUT("/:id", manage, handler.Update)
		payrolls.PATCH("/:id/status", manage, handler.UpdateStatus)
	}

	components := r.Group("/payroll-components")
	{
		components.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceComponent, rbac.ActionRead), handler.ListComponents)
		components.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceComponent, rbac.ActionManage), handler.CreateComponent)
	}
}
