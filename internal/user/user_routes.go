package user

import (
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	self := middleware.RBACAuthorize(rbacService, rbac.ResourceProfile, rbac.ActionSelf)
	manage := middleware.RBACAuthorize(rbacService, rbac.ResourceUser, rbac.ActionManage)
	deactivate := middleware.RBACAuthorize(rbacService, rbac.ResourceUser, rbac.ActionDeactivate)

	users := r.Group("/users")
	{
		users.GET("/me/profile", self, handler.GetMyProfile)
		users.PUT("/me/profile", self, handler.UpdateMyProfile)

		users.POST("", manage, handler.Create)
		users.GET("", manage, handler.List)
		users.GET("/:id", self, handler.GetByID)
		users.PATCH("/:id/role", manage, handler.ChangeRole)
		users.PUT("/:id/profile", manage, handler.UpdateProfile)
		users.DELETE("/:id", deactivate, handler.Deactivate)
	}
}
