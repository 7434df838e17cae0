/*
Package logger - Structured Logging for the Payroll Engine

==============================================================================
FILE: internal/logger/logger.go
==============================================================================

DESCRIPTION:
    Configures structured JSON logging with logrus plus the Gin middleware
    used for HTTP request logging. The same *logrus.Logger instance is
    shared by the HTTP layer, the batch driver, and the auto-hold check,
    so a batch run's per-employee warnings land in the same stream as the
    request that triggered them.

USER PERSPECTIVE:
    - Production logs at Info level; development logs at Debug
    - Calculation warnings (missing base salary, failed auto-hold check)
      are structured entries with employee_code and month fields,
      greppable per payroll cycle; hours clamped by the day classifier
      are not logged

DEVELOPER GUIDELINES:
    DO NOT log bank account numbers, IFSC codes, or phone numbers -
    employee bank info passes through the snapshot layer and must never
    reach the log stream.
    Use structured fields (log.WithFields) instead of string
    concatenation so cycle-scoped queries keep working.

LOG LEVELS:
    - Error: failed operations (500+ status codes, snapshot write aborts)
    - Warn: client errors (400-499), optional-config-missing fallbacks
    - Info: normal operations, successful requests
    - Debug: per-pass attendance detail (development only)

==============================================================================
*/

package logger

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Setup initializes the logger with a given environment.
func Setup(env string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	if env == "production" {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

// WithCycle returns an entry tagged with the employee_code and month
// fields every calculation warning carries, so one payroll cycle's
// warnings can be pulled from the stream with a single filter.
func WithCycle(log *logrus.Logger, employeeCode, month string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"employee_code": employeeCode,
		"month":         month,
	})
}

// GinLogger returns a gin.HandlerFunc for logging HTTP requests.
func GinLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := log.WithFields(logrus.Fields{
			"latency":    time.Since(start),
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"ip":         c.ClientIP(),
			"uri":        path,
			"user_agent": c.Request.UserAgent(),
			"errors":     c.Errors.ByType(gin.ErrorTypePrivate).String(),
		})

		if c.Writer.Status() >= 500 {
			entry.Error()
		} else if c.Writer.Status() >= 400 {
			entry.Warn()
		} else {
			entry.Info()
		}
	}
}
