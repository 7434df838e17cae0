package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iris-hr/biopayroll/internal/payroll"
)

func codes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("E%d", i+1)
	}
	return out
}

func TestRunProcessesEveryEmployee(t *testing.T) {
	opts := Options{
		ChunkSize:  3,
		ChunkYield: time.Millisecond,
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode, NetSalary: 1000}, nil
		},
	}

	result, err := Run(context.Background(), codes(7), opts)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int64(7000), result.TotalNetSalary)
}

func TestRunSkipsHeldEmployeesWithoutError(t *testing.T) {
	opts := Options{
		ChunkSize:  2,
		ChunkYield: time.Millisecond,
		CheckHold: func(employeeCode string) (bool, string, error) {
			if employeeCode == "E2" {
				return true, "pending document verification", nil
			}
			return false, "", nil
		},
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode, NetSalary: 500}, nil
		},
	}

	result, err := Run(context.Background(), codes(3), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Failed)

	var sawSkip bool
	for _, r := range result.Data {
		if r.EmployeeCode == "E2" {
			sawSkip = true
			assert.True(t, r.Skipped)
			assert.Equal(t, "pending document verification", r.SkipReason)
		}
	}
	assert.True(t, sawSkip)
}

func TestRunCollectsPerEmployeeFailures(t *testing.T) {
	opts := Options{
		ChunkSize:  2,
		ChunkYield: time.Millisecond,
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			if employeeCode == "E3" {
				return nil, assertErr("calculation exploded")
			}
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode}, nil
		},
	}

	result, err := Run(context.Background(), codes(4), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E3", result.Errors[0].EmployeeCode)
}

func TestRunEnforcesPerEmployeeTimeout(t *testing.T) {
	opts := Options{
		ChunkSize:       2,
		ChunkYield:      time.Millisecond,
		EmployeeTimeout: 10 * time.Millisecond,
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			if employeeCode == "E1" {
				time.Sleep(50 * time.Millisecond)
			}
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode}, nil
		},
	}

	result, err := Run(context.Background(), codes(2), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E1", result.Errors[0].EmployeeCode)
}

func TestRunRespectsChunkBoundedConcurrency(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex

	opts := Options{
		ChunkSize:  3,
		ChunkYield: time.Millisecond,
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			n := atomic.AddInt32(&inFlight, 1)
			mu.Lock()
			if n > maxInFlight {
				maxInFlight = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode}, nil
		},
	}

	_, err := Run(context.Background(), codes(9), opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, int(maxInFlight), 3)
}

func TestRunStopsBetweenChunksWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var processed int32

	opts := Options{
		ChunkSize:  2,
		ChunkYield: 5 * time.Millisecond,
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			atomic.AddInt32(&processed, 1)
			if employeeCode == "E2" {
				cancel()
			}
			return &payroll.SalaryCalculation{EmployeeCode: employeeCode}, nil
		},
	}

	_, err := Run(ctx, codes(10), opts)
	assert.Error(t, err)
	assert.Less(t, int(processed), 10)
}

type simpleError struct{ msg string }

func (e *simpleError) Error() string { return e.msg }

func assertErr(msg string) error { return &simpleError{msg: msg} }
