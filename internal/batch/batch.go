/*
Package batch - Chunked Parallel Batch Summary Driver

==============================================================================
FILE: internal/batch/batch.go
==============================================================================

DESCRIPTION:
    Iterates every employee whose effective range overlaps a payroll
    cycle, partitions them into chunks of bounded size, and calculates each
    chunk's employees concurrently (concurrency = chunk size). Between
    chunks it yields briefly so the driver doesn't starve other database
    traffic. Held employees are skipped (not an error); every other
    employee runs the auto-hold check before the full calculation.

DEVELOPER GUIDELINES:
    OK to modify: Chunk size, per-employee timeout, yield duration
    CAUTION: a cancelled context must stop the driver between chunks and
    between employees within a chunk - do not swallow ctx.Err().

==============================================================================
*/
package batch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/logger"
	"github.com/iris-hr/biopayroll/internal/payroll"
)

const (
	DefaultChunkSize       = 10
	DefaultEmployeeTimeout = 30 * time.Second
	DefaultChunkYield      = 200 * time.Millisecond
)

// EmployeeResult is one employee's outcome within a batch run.
type EmployeeResult struct {
	EmployeeCode string
	Calculation  *payroll.SalaryCalculation
	Skipped      bool
	SkipReason   string
	Err          error
}

// Result is the driver's aggregate output for one cycle.
type Result struct {
	Processed      int
	Failed         int
	Data           []EmployeeResult
	Errors         []EmployeeResult
	TotalNetSalary int64
}

// CalculateFunc performs one employee's full calculation and snapshot
// persistence for the cycle, returning the calculation for aggregation.
type CalculateFunc func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error)

// HoldCheckFunc reports whether an employee has an unreleased hold for the
// cycle being processed.
type HoldCheckFunc func(employeeCode string) (held bool, reason string, err error)

// AutoHoldCheckFunc runs the auto-hold check for one employee; failures are
// logged as warnings and never fail the surrounding calculation.
type AutoHoldCheckFunc func(employeeCode string) error

// Options configures one Run invocation.
type Options struct {
	// Month is the cycle label being processed, carried into every
	// warning logged for an employee in this run.
	Month string

	ChunkSize        int
	EmployeeTimeout  time.Duration
	ChunkYield       time.Duration
	Calculate        CalculateFunc
	CheckHold        HoldCheckFunc
	RunAutoHoldCheck AutoHoldCheckFunc
	Log              *logrus.Logger
}

func (o *Options) applyDefaults() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.EmployeeTimeout <= 0 {
		o.EmployeeTimeout = DefaultEmployeeTimeout
	}
	if o.ChunkYield <= 0 {
		o.ChunkYield = DefaultChunkYield
	}
}

// Run processes employeeCodes in chunks of Options.ChunkSize, bounded
// concurrency per chunk, yielding between chunks. ctx cancellation is
// observed between chunks and between employees within a chunk.
func Run(ctx context.Context, employeeCodes []string, opts Options) (*Result, error) {
	opts.applyDefaults()

	result := &Result{}
	limiter := rate.NewLimiter(rate.Every(opts.ChunkYield), 1)

	for start := 0; start < len(employeeCodes); start += opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + opts.ChunkSize
		if end > len(employeeCodes) {
			end = len(employeeCodes)
		}
		chunk := employeeCodes[start:end]

		chunkResults, err := runChunk(ctx, chunk, opts)
		if err != nil {
			return result, err
		}

		for _, r := range chunkResults {
			switch {
			case r.Skipped:
				result.Data = append(result.Data, r)
			case r.Err != nil:
				result.Failed++
				result.Errors = append(result.Errors, r)
			default:
				result.Processed++
				result.Data = append(result.Data, r)
				if r.Calculation != nil {
					result.TotalNetSalary += r.Calculation.NetSalary
				}
			}
		}

		if end < len(employeeCodes) {
			if err := limiter.Wait(ctx); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func runChunk(ctx context.Context, chunk []string, opts Options) ([]EmployeeResult, error) {
	results := make([]EmployeeResult, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	for i, employeeCode := range chunk {
		i, employeeCode := i, employeeCode
		g.Go(func() error {
			results[i] = processEmployee(gctx, employeeCode, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processEmployee(ctx context.Context, employeeCode string, opts Options) EmployeeResult {
	if opts.CheckHold != nil {
		held, reason, err := opts.CheckHold(employeeCode)
		if err != nil {
			return EmployeeResult{EmployeeCode: employeeCode, Err: errors.Wrap(err, errors.ErrDatabaseOperation)}
		}
		if held {
			return EmployeeResult{EmployeeCode: employeeCode, Skipped: true, SkipReason: reason}
		}
	}

	if opts.RunAutoHoldCheck != nil {
		if err := opts.RunAutoHoldCheck(employeeCode); err != nil && opts.Log != nil {
			logger.WithCycle(opts.Log, employeeCode, opts.Month).
				WithField("error", err.Error()).
				Warn("auto-hold check failed, continuing calculation")
		}
	}

	employeeCtx, cancel := context.WithTimeout(ctx, opts.EmployeeTimeout)
	defer cancel()

	calcCh := make(chan struct {
		calc *payroll.SalaryCalculation
		err  error
	}, 1)

	go func() {
		calc, err := opts.Calculate(employeeCtx, employeeCode)
		calcCh <- struct {
			calc *payroll.SalaryCalculation
			err  error
		}{calc, err}
	}()

	select {
	case <-employeeCtx.Done():
		return EmployeeResult{EmployeeCode: employeeCode, Err: errors.Wrap(employeeCtx.Err(), errors.ErrBatchEmployeeTimeout)}
	case r := <-calcCh:
		if r.err != nil {
			return EmployeeResult{EmployeeCode: employeeCode, Err: r.err}
		}
		return EmployeeResult{EmployeeCode: employeeCode, Calculation: r.calc}
	}
}

// LoadActiveEmployeeCodes returns every employee whose effective range
// overlaps the named cycle's bounds: joined on or before cycleEnd, and
// either still active or exited on or after cycleStart.
func LoadActiveEmployeeCodes(db *gorm.DB, cycleStartStr, cycleEndStr string) ([]string, error) {
	var codes []string
	err := db.Table("employeedetails").
		Where("joining_date <= ?", cycleEndStr).
		Where("exit_date IS NULL OR exit_date >= ?", cycleStartStr).
		Pluck("employee_code", &codes).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return codes, nil
}
