package main

import (
	"context"
	"log"

	"dayflow-hrms/internal/app"
	"dayflow-hrms/internal/bootstrap"
	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/middleware"
	"dayflow-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	apperror.Init()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(cfg.Origins()))

	// build dependency + routes
	cleanup, err := app.BuildApp(context.Background(), r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfigFrom(cfg.Server),
		bootstrap.NewStdoutAuditLogger(logger),
	)
}
