package salarystructure

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
	manage := middleware.RBACAuthorize(rbacService, rbac.ResourceSalary, rbac.ActionManage)

	structures := r.Group("/salary-structures")
	{
		structures.POST("",
			middleware.RateLimitByUser(0.5, 2),
			manage,
			handler.Create,
		)
		structures.GET("/my",
			middleware.RBACAuthorize(rbacService, rbac.ResourceSalary, rbac.ActionSelf),
			handler.GetMine,
		)
		structures.GET("/employees/:employee_id", manage, handler.GetActive)
		structures.GET("/employees/:employee_id/history", manage, handler.History)
	}
}
