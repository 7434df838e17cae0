/*
Package api - Payroll Endpoints

==============================================================================
FILE: internal/api/payroll_handler.go
==============================================================================

DESCRIPTION:
    Exposes the payroll engine's public operations as HTTP endpoints:
    calculate one employee's monthly hours, calculate one
    employee's salary, run a month's batch, and finalize one or all
    snapshots. Every handler parses its input, delegates to
    internal/service, and maps the result (or error) to JSON - no
    calculation logic lives here.

ENDPOINTS:
    GET  /payroll/:month/:employeeCode/hours    - monthly attendance
    GET  /payroll/:month/:employeeCode/salary   - salary calculation
    POST /payroll/:month/batch                  - batch calculate + snapshot
    POST /payroll/:month/:employeeCode/finalize - finalize one snapshot
    POST /payroll/:month/finalize-all           - finalize every draft

==============================================================================
*/
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/service"
)

// PayrollHandler handles payroll endpoints.
type PayrollHandler struct {
	payrollService *service.PayrollService
}

// NewPayrollHandler creates a new payroll handler.
func NewPayrollHandler(payrollService *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

// RegisterRoutes registers payroll routes.
func (h *PayrollHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The month segment leads every route so the wildcard layout stays
	// consistent across the GET and POST trees.
	payroll := router.Group("/payroll")
	{
		payroll.GET("/:month/:employeeCode/hours", h.CalculateMonthlyHours)
		payroll.GET("/:month/:employeeCode/salary", h.CalculateSalary)
		payroll.POST("/:month/batch", h.BatchCalculate)
		payroll.POST("/:month/:employeeCode/finalize", h.FinalizeSalary)
		payroll.POST("/:month/finalize-all", h.FinalizeAllSalaries)
	}
}

// CalculateMonthlyHours handles GET /payroll/:month/:employeeCode/hours.
func (h *PayrollHandler) CalculateMonthlyHours(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	month := c.Param("month")

	att, err := h.payrollService.CalculateMonthlyHours(c.Request.Context(), employeeCode, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, att)
}

// CalculateSalary handles GET /payroll/:month/:employeeCode/salary.
func (h *PayrollHandler) CalculateSalary(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	month := c.Param("month")

	calc, err := h.payrollService.CalculateSalary(c.Request.Context(), employeeCode, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

// batchCalculateRequest is the optional JSON body for a batch run.
type batchCalculateRequest struct {
	ChunkSize int `json:"chunk_size"`
}

// BatchCalculate handles POST /payroll/:month/batch.
func (h *PayrollHandler) BatchCalculate(c *gin.Context) {
	month := c.Param("month")

	var req batchCalculateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if chunkSizeParam := c.Query("chunk_size"); chunkSizeParam != "" {
		if n, err := strconv.Atoi(chunkSizeParam); err == nil {
			req.ChunkSize = n
		}
	}

	result, err := h.payrollService.BatchCalculate(c.Request.Context(), month, req.ChunkSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// finalizeRequest is the JSON body naming the actor performing a finalize.
type finalizeRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// FinalizeSalary handles POST /payroll/:month/:employeeCode/finalize.
func (h *PayrollHandler) FinalizeSalary(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	month := c.Param("month")

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor is required"})
		return
	}

	if err := h.payrollService.FinalizeSalary(employeeCode, month, req.Actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "finalized"})
}

// FinalizeAllSalaries handles POST /payroll/:month/finalize-all.
func (h *PayrollHandler) FinalizeAllSalaries(c *gin.Context) {
	month := c.Param("month")

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor is required"})
		return
	}

	count, err := h.payrollService.FinalizeAllSalaries(month, req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finalized_count": count})
}

// respondError maps a typed AppError to its HTTP status and JSON body.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.GetHTTPStatus(err), gin.H{
		"error":   apperrors.GetErrorCode(err),
		"message": apperrors.GetErrorMessage(err),
	})
}
