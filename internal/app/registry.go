package app

import (
	"database/sql"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/auth"
	"dayflow-hrms/internal/auth/token"
	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/dashboard"
	"dayflow-hrms/internal/leave"
	"dayflow-hrms/internal/messaging/kafka"
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/payroll"
	"dayflow-hrms/internal/rbac"
	"dayflow-hrms/internal/rbac/infra"
	"dayflow-hrms/internal/regularization"
	"dayflow-hrms/internal/salarystructure"
	"dayflow-hrms/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type modules struct {
	users user.Service
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb redis.Cmdable,
) (*modules, error) {
	policy, err := attendance.NewPolicy(cfg.Attendance, cfg.Location())
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)
	regularizationRepo := regularization.NewRepository(gormDB)
	salaryStructureRepo := salarystructure.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return nil, err
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// --- Services ---
	notificationService := notification.NewService(db, notificationRepo, outboxRepo)
	authService := auth.NewService(userRepo, tokens)
	attendanceService := attendance.NewService(db, attendanceRepo, policy)
	leaveService := leave.NewService(db, leaveRepo, notificationService)
	payrollService := payroll.NewService(db, payrollRepo, salaryStructureRepo, notificationService)
	regularizationService := regularization.NewService(db, regularizationRepo, attendanceRepo, policy, notificationService)
	salaryStructureService := salarystructure.NewService(db, salaryStructureRepo)
	userService := user.NewServiceWithCost(db, userRepo, notificationService, cfg.Auth.BcryptCost)
	dashboardService := dashboard.NewService(dashboard.Sources{
		Attendances:   attendanceRepo,
		Leaves:        leaveRepo,
		Payrolls:      payrollRepo,
		Users:         userRepo,
		Notifications: notificationRepo,
	}, policy, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, auth.CookieOptions{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	attendanceHandler := attendance.NewHandler(attendanceService)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	leaveHandler := leave.NewHandler(leaveService)
	notificationHandler := notification.NewHandler(notificationService)
	payrollHandler := payroll.NewHandler(payrollService)
	rbacHandler := rbac.NewHandler(rbacService)
	regularizationHandler := regularization.NewHandler(regularizationService)
	salaryStructureHandler := salarystructure.NewHandler(salaryStructureService)
	userHandler := user.NewHandler(userService)

	// --- Routes Registration ---
	authMiddleware := middleware.AuthMiddleware(tokens)

	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, authMiddleware)

	protected := api.Group("", authMiddleware, middleware.ContextLogger(zap.L().Named("http")))
	{
		attendance.RegisterRoutes(protected, attendanceHandler, rbacService)
		dashboard.RegisterRoutes(protected, dashboardHandler, rbacService)
		leave.RegisterRoutes(protected, leaveHandler, rbacService)
		notification.RegisterRoutes(protected, notificationHandler, rbacService)
		payroll.RegisterRoutes(protected, payrollHandler, rbacService, rdb)
		rbac.RegisterRoutes(protected, rbacHandler)
		regularization.RegisterRoutes(protected, regularizationHandler, rbacService)
		salarystructure.RegisterRoutes(protected, salaryStructureHandler, rbacService)
		user.RegisterRoutes(protected, userHandler, rbacService)
	}

	return &modules{users: userService}, nil
}
