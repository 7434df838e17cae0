package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/config"
	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/logger"
	"github.com/iris-hr/biopayroll/internal/models"
	"github.com/iris-hr/biopayroll/internal/payroll"
	"github.com/iris-hr/biopayroll/internal/shift"
	"github.com/iris-hr/biopayroll/internal/snapshot"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&models.Employee{},
		&shift.Shift{},
		&shift.ShiftAssignment{},
		&models.Regularization{},
		&models.Holiday{},
		&models.OvertimeToggle{},
		&leave.MonthlyLeaveUsage{},
		&leave.LeaveEntitlement{},
		&payroll.SalaryAdjustment{},
		&payroll.SalaryHold{},
		&snapshot.MonthlySalary{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// createDevicelogsTable creates a per-month punch table matching the
// contractual devicelogs_MM_YYYY shape, with a handful of punches.
func createDevicelogsTable(t *testing.T, db *gorm.DB, month time.Month, year int, rows [][2]string) {
	table := devicelogsTable(cycle.NewLocalDate(year, month, 1))
	err := db.Exec("CREATE TABLE " + table + " (userid TEXT, logdate DATETIME, direction TEXT)").Error
	require.NoError(t, err)
	for _, r := range rows {
		err := db.Exec("INSERT INTO "+table+" (userid, logdate, direction) VALUES (?, ?, ?)", r[0], r[1], "").Error
		require.NoError(t, err)
	}
}

func testEmployee(employeeCode string) models.Employee {
	return models.Employee{
		EmployeeCode: employeeCode,
		Name:         "Test Employee",
		JoiningDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		BasicSalary:  30000,
		ShiftName:    "",
	}
}

func testConfig() *config.AppConfig {
	cfg := config.DefaultAppConfig()
	cfg.FallbackBaseSalary = 15000
	return cfg
}

func TestCalculateMonthlyHoursRunsAttendanceEngine(t *testing.T) {
	db := setupServiceTestDB(t)
	emp := testEmployee("E1")
	require.NoError(t, db.Create(&emp).Error)

	createDevicelogsTable(t, db, time.October, 2025, [][2]string{
		{"E1", "2025-10-01T10:00:00"},
		{"E1", "2025-10-01T19:00:00"},
	})

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))
	att, err := svc.CalculateMonthlyHours(context.Background(), "E1", "2025-10")
	require.NoError(t, err)
	assert.Equal(t, "E1", att.EmployeeCode)
	assert.GreaterOrEqual(t, att.FullDays, 1)
}

func TestCalculateAndSnapshotPersistsDraftRow(t *testing.T) {
	db := setupServiceTestDB(t)
	emp := testEmployee("E2")
	require.NoError(t, db.Create(&emp).Error)
	createDevicelogsTable(t, db, time.October, 2025, nil)

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))
	row, err := svc.CalculateAndSnapshot(context.Background(), "E2", "2025-10", "tester")
	require.NoError(t, err)
	assert.Equal(t, "E2", row.EmployeeCode)
	assert.Equal(t, snapshot.StatusDraft, row.Status)

	stored, err := snapshot.GetSalary(db, "E2", "2025-10", false)
	require.NoError(t, err)
	assert.Equal(t, row.NetSalary, stored.NetSalary)
}

func TestCalculateAndSnapshotHonorsUnreleasedHold(t *testing.T) {
	db := setupServiceTestDB(t)
	emp := testEmployee("E3")
	require.NoError(t, db.Create(&emp).Error)
	createDevicelogsTable(t, db, time.October, 2025, nil)

	hold := payroll.SalaryHold{EmployeeCode: "E3", Month: "2025-10", HoldType: payroll.HoldTypeManual, Reason: "pending review"}
	require.NoError(t, db.Create(&hold).Error)

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))
	row, err := svc.CalculateAndSnapshot(context.Background(), "E3", "2025-10", "tester")
	require.NoError(t, err)
	assert.True(t, row.IsHeld)
	assert.Equal(t, "pending review", row.HoldReason)
}

func TestFinalizeSalaryLatchesStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	emp := testEmployee("E4")
	require.NoError(t, db.Create(&emp).Error)
	createDevicelogsTable(t, db, time.October, 2025, nil)

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))
	_, err := svc.CalculateAndSnapshot(context.Background(), "E4", "2025-10", "tester")
	require.NoError(t, err)

	require.NoError(t, svc.FinalizeSalary("E4", "2025-10", "approver"))

	stored, err := snapshot.GetSalary(db, "E4", "2025-10", true)
	require.NoError(t, err)
	assert.Equal(t, snapshot.StatusFinalized, stored.Status)
}

func TestBatchCalculateProcessesAllActiveEmployees(t *testing.T) {
	db := setupServiceTestDB(t)
	e5 := testEmployee("E5")
	e6 := testEmployee("E6")
	require.NoError(t, db.Create(&e5).Error)
	require.NoError(t, db.Create(&e6).Error)
	createDevicelogsTable(t, db, time.October, 2025, nil)

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))
	result, err := svc.BatchCalculate(context.Background(), "2025-10", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Empty(t, result.Errors)
}

// TestHasNonAbsentPunchRequiresNonAbsentClassification: a stray punch row
// alone is not activity. A lone check-in classifies absent and must not
// suppress an auto-hold; a real punch pair must.
func TestHasNonAbsentPunchRequiresNonAbsentClassification(t *testing.T) {
	db := setupServiceTestDB(t)
	emp := testEmployee("E7")
	require.NoError(t, db.Create(&emp).Error)

	createDevicelogsTable(t, db, time.November, 2025, [][2]string{
		{"E7", "2025-11-03T10:00:00"},
		{"E7", "2025-11-04T10:00:00"},
		{"E7", "2025-11-04T19:05:00"},
	})

	svc := NewPayrollService(db, testConfig(), logger.Setup("testing"))

	got, err := svc.hasNonAbsentPunch("E7", cycle.MustParseLocalDate("2025-11-03"))
	require.NoError(t, err)
	assert.False(t, got, "a lone check-in classifies absent and is not activity")

	got, err = svc.hasNonAbsentPunch("E7", cycle.MustParseLocalDate("2025-11-04"))
	require.NoError(t, err)
	assert.True(t, got, "a full-day punch pair is activity")
}
