/*
Package main - Payroll Engine Entry Point

==============================================================================
FILE: cmd/payrolld/main.go
==============================================================================

DESCRIPTION:
    Entry point for the payroll engine daemon. Wires configuration, the
    database connection, the calculation service, a monthly batch-run
    cron schedule, and the thin HTTP adapter, then serves until an OS
    signal requests a graceful shutdown.

ARCHITECTURE:
    main() -> LoadAppConfig -> logger.Setup -> database.NewConnection ->
    AutoMigrate -> service.NewPayrollService -> cron registration ->
    api.NewRouter -> http.Server with goroutine ListenAndServe
                                                        |
    ShutdownServer <- WaitForSignal <- ListenAndServe <-+

==============================================================================
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/iris-hr/biopayroll/internal/api"
	"github.com/iris-hr/biopayroll/internal/config"
	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/database"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/logger"
	"github.com/iris-hr/biopayroll/internal/models"
	"github.com/iris-hr/biopayroll/internal/payroll"
	"github.com/iris-hr/biopayroll/internal/service"
	"github.com/iris-hr/biopayroll/internal/shift"
	"github.com/iris-hr/biopayroll/internal/snapshot"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load application configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Env)

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.DBDriver)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.IsDevelopment() {
		if err := autoMigrate(db); err != nil {
			appLogger.Warnf("Migration failed: %v", err)
		}
	}

	payrollService := service.NewPayrollService(db, cfg, appLogger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 5 26 * *", func() {
		runMonthlyBatch(payrollService, appLogger)
	}); err != nil {
		appLogger.Warnf("Failed to register monthly batch cron entry: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := setupRouter(cfg, payrollService)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting payroll engine on port %d in %s mode", cfg.ServerPort, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down payroll engine...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("Payroll engine exited properly")
}

func setupRouter(cfg *config.AppConfig, payrollService *service.PayrollService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	api.NewRouter(cfg, payrollService).Setup(router.Group("/api/v1"))
	return router
}

// runMonthlyBatch fires batchCalculate for the cycle that just closed (the
// 25th), mirroring the "fire batchCalculate for the just-closed cycle"
// schedule; the auto-hold sweep runs as part of each employee's batch pass
// via payrollService.BatchCalculate -> batch.CheckAndCreateAutoHold.
func runMonthlyBatch(payrollService *service.PayrollService, appLogger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}) {
	yesterday := time.Now().AddDate(0, 0, -1)
	month := cycle.Label(cycle.NewLocalDate(yesterday.Year(), yesterday.Month(), yesterday.Day()))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	result, err := payrollService.BatchCalculate(ctx, month, 0)
	if err != nil {
		appLogger.Errorf("scheduled batch run for %s failed: %v", month, err)
		return
	}
	appLogger.Infof("scheduled batch run for %s processed %d employees (%d failed), total net salary %d",
		month, result.Processed, result.Failed, result.TotalNetSalary)
}

// autoMigrate applies GORM auto-migration for every contractual model this
// engine owns. The devicelogs_MM_YYYY tables are provisioned by the
// upstream biometric device integration, not this service, so they are
// deliberately absent here.
func autoMigrate(db interface {
	AutoMigrate(dst ...interface{}) error
}) error {
	return db.AutoMigrate(
		&models.Employee{},
		&models.Regularization{},
		&models.Holiday{},
		&models.OvertimeToggle{},
		&shift.Shift{},
		&shift.ShiftAssignment{},
		&leave.MonthlyLeaveUsage{},
		&leave.LeaveEntitlement{},
		&payroll.SalaryAdjustment{},
		&payroll.SalaryHold{},
		&snapshot.MonthlySalary{},
	)
}
