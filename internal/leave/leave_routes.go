package leave

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	apply := middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApply)

	leaves := r.Group("/leaves")
	{
		leaves.POST("", apply, middleware.RateLimitByUser(1, 5), handler.Apply)
		leaves.GET("/my", apply, handler.My)
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadAll), handler.List)
		leaves.GET("/:id", apply, handler.GetByID)
		leaves.PUT("/:id", apply, handler.Update)
		leaves.DELETE("/:id", apply, handler.Delete)
		leaves.POST("/:id/decide", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.Decide)
		leaves.POST("/:id/cancel", apply, handler.Cancel)
	}
}
