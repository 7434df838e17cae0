/*
Package api - Thin HTTP Adapter

==============================================================================
FILE: internal/api/router.go
==============================================================================

DESCRIPTION:
    A minimal Gin router exposing the four public-contract operations
    (calculateSalary, calculateMonthlyHours, batchCalculate, finalize) as
    HTTP endpoints. No business logic lives here - handlers validate input
    shape and delegate to internal/service. HTTP routing and request
    validation are explicitly out of the calculation core's scope; this
    package exists only as the out-of-core adapter that exercises it.

DEVELOPER GUIDELINES:
    OK to modify: Add new routes, new handlers
    CAUTION: Keep handlers thin - any branching beyond "parse, call,
    respond" belongs in internal/service instead.

==============================================================================
*/
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/iris-hr/biopayroll/internal/config"
	"github.com/iris-hr/biopayroll/internal/logger"
	"github.com/iris-hr/biopayroll/internal/service"
)

// Router sets up all API routes.
type Router struct {
	cfg            *config.AppConfig
	payrollService *service.PayrollService
}

// NewRouter creates a new router over an already-constructed service.
func NewRouter(cfg *config.AppConfig, payrollService *service.PayrollService) *Router {
	return &Router{cfg: cfg, payrollService: payrollService}
}

// Setup configures all routes on routerGroup.
func (r *Router) Setup(routerGroup *gin.RouterGroup) {
	if r.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerGroup.Use(cors.New(corsConfig(r.cfg.CORSAllowedOrigins)))
	routerGroup.Use(logger.GinLogger(logger.Setup(r.cfg.Env)))
	routerGroup.Use(gin.Recovery())

	routerGroup.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "biopayroll",
		})
	})

	payrollHandler := NewPayrollHandler(r.payrollService)
	payrollHandler.RegisterRoutes(routerGroup)
}

// corsConfig builds a gin-contrib/cors configuration from the configured
// comma-separated origin list. A wildcard origin cannot carry credentials
// per the cors.Config validity rule, so "*" maps to AllowAllOrigins with
// credentials disabled instead of a literal ["*"] AllowOrigins entry.
func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if strings.TrimSpace(allowedOrigins) == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = strings.Split(allowedOrigins, ",")
	return cfg
}
