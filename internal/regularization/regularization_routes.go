package regularization

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	request := middleware.RBACAuthorize(rbacService, rbac.ResourceRegularization, rbac.ActionRequest)
	decide := middleware.RBACAuthorize(rbacService, rbac.ResourceRegularization, rbac.ActionDecide)

	regularizations := r.Group("/attendance/regularizations")
	{
		regularizations.POST("", request, middleware.RateLimitByUser(1, 5), handler.Create)
		regularizations.GET("/my", request, handler.My)
		regularizations.GET("", decide, handler.List)
		regularizations.GET("/:id", request, handler.GetByID)
		regularizations.POST("/:id/decide", decide, handler.Decide)
	}
}
