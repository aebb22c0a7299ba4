package dashboard

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
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceDashboard, rbac.ActionSelf), handler.Personal)
		dashboard.GET("/hr", middleware.RBACAuthorize(rbacService, rbac.ResourceDashboard, rbac.ActionHR), handler.HR)
	}
}
