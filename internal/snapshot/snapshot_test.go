package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/attendance"
	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/payroll"
)

func setupSnapshotTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(&MonthlySalary{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func sampleRow(t *testing.T, employeeCode, month string) *MonthlySalary {
	calc := payroll.SalaryCalculation{
		EmployeeCode: employeeCode,
		Month:        month,
		GrossSalary:  20000,
		NetSalary:    19000,
		BaseSalary:   20000,
	}
	row, err := BuildRow(calc, Breakdown{Calculation: calc}, "system", time.Unix(1700000000, 0))
	require.NoError(t, err)
	return row
}

func TestUpsertSalaryCreatesDraft(t *testing.T) {
	db := setupSnapshotTestDB(t)
	row := sampleRow(t, "E1", "2025-11")

	require.NoError(t, UpsertSalary(db, row))

	fetched, err := GetSalary(db, "E1", "2025-11", false)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, fetched.Status)
	assert.Equal(t, 20000.0, fetched.GrossSalary)
}

func TestUpsertSalaryPreservesFinalized(t *testing.T) {
	db := setupSnapshotTestDB(t)
	row := sampleRow(t, "E2", "2025-11")
	require.NoError(t, UpsertSalary(db, row))
	require.NoError(t, FinalizeSalary(db, "E2", "2025-11", "admin"))

	recompute := sampleRow(t, "E2", "2025-11")
	recompute.GrossSalary = 99999
	require.NoError(t, UpsertSalary(db, recompute))

	fetched, err := GetSalary(db, "E2", "2025-11", true)
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, fetched.Status)
	assert.Equal(t, 20000.0, fetched.GrossSalary) // unchanged by the shadow recompute
}

func TestGetSalaryFinalizedOnlyExcludesDraft(t *testing.T) {
	db := setupSnapshotTestDB(t)
	row := sampleRow(t, "E3", "2025-11")
	require.NoError(t, UpsertSalary(db, row))

	_, err := GetSalary(db, "E3", "2025-11", true)
	assert.Error(t, err)
}

func TestFinalizeSalaryIsNoOpWhenAlreadyFinalized(t *testing.T) {
	db := setupSnapshotTestDB(t)
	row := sampleRow(t, "E4", "2025-11")
	require.NoError(t, UpsertSalary(db, row))
	require.NoError(t, FinalizeSalary(db, "E4", "2025-11", "admin"))
	require.NoError(t, FinalizeSalary(db, "E4", "2025-11", "admin-again"))

	fetched, err := GetSalary(db, "E4", "2025-11", true)
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, fetched.Status)
}

func TestFinalizeSalaryErrorsWhenMissing(t *testing.T) {
	db := setupSnapshotTestDB(t)
	err := FinalizeSalary(db, "GHOST", "2025-11", "admin")
	assert.Error(t, err)
}

func TestFinalizeAllSalariesForMonthCountsOnlyDraftRows(t *testing.T) {
	db := setupSnapshotTestDB(t)
	require.NoError(t, UpsertSalary(db, sampleRow(t, "E5", "2025-11")))
	require.NoError(t, UpsertSalary(db, sampleRow(t, "E6", "2025-11")))
	require.NoError(t, FinalizeSalary(db, "E6", "2025-11", "admin")) // already finalized, shouldn't be double-counted

	count, err := FinalizeAllSalariesForMonth(db, "2025-11", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestBuildRowBreakdownJSONCarriesDates: the persisted blob must be
// self-contained - a consumer reading it back gets real calendar dates and
// punch times, not opaque placeholders.
func TestBuildRowBreakdownJSONCarriesDates(t *testing.T) {
	entry, err := cycle.ParsePunchTimestamp("2025-11-03T10:02:00")
	require.NoError(t, err)

	calc := payroll.SalaryCalculation{EmployeeCode: "E8", Month: "2025-11"}
	breakdown := Breakdown{
		DailyBreakdown: []attendance.DailyBreakdown{
			{
				Date:       cycle.MustParseLocalDate("2025-11-03"),
				FirstEntry: &entry,
				Status:     attendance.StatusFullDay,
			},
		},
		Calculation: calc,
	}
	row, err := BuildRow(calc, breakdown, "system", time.Unix(1700000000, 0))
	require.NoError(t, err)

	assert.Contains(t, string(row.BreakdownJSON), `"2025-11-03"`)
	assert.Contains(t, string(row.BreakdownJSON), `"2025-11-03T10:02:00"`)

	var back Breakdown
	require.NoError(t, json.Unmarshal(row.BreakdownJSON, &back))
	require.Len(t, back.DailyBreakdown, 1)
	assert.Equal(t, "2025-11-03", back.DailyBreakdown[0].Date.String())
	require.NotNil(t, back.DailyBreakdown[0].FirstEntry)
	assert.Equal(t, 10, back.DailyBreakdown[0].FirstEntry.Hour())
}

func TestGetLatestSalaryReturnsMostRecentMonth(t *testing.T) {
	db := setupSnapshotTestDB(t)
	require.NoError(t, UpsertSalary(db, sampleRow(t, "E7", "2025-09")))
	require.NoError(t, UpsertSalary(db, sampleRow(t, "E7", "2025-11")))
	require.NoError(t, UpsertSalary(db, sampleRow(t, "E7", "2025-10")))

	latest, err := GetLatestSalary(db, "E7", false)
	require.NoError(t, err)
	assert.Equal(t, "2025-11", latest.Month)
}
