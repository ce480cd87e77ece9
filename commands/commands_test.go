package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/database"
	"fintrack/models"
	"fintrack/service"
)

// setupEnv points the config at a temp database and export dir.
func setupEnv(t *testing.T) (dbPath, exportDir string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "finance_tracker.db")
	exportDir = filepath.Join(dir, "exports")
	t.Setenv("FINTRACK_DATABASE_PATH", dbPath)
	t.Setenv("FINTRACK_EXPORT_DIR", exportDir)
	return dbPath, exportDir
}

func seedStore(t *testing.T, dbPath string) {
	t.Helper()
	store, err := database.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	records := service.NewRecordService(store)
	for _, row := range []models.Record{
		{"description": "Salary", "amount": 100, "date": "2024-01-15"},
		{"description": "Bonus", "amount": 50, "date": "2024-02-01"},
	} {
		_, err := records.Insert(models.KindIncome, row)
		require.NoError(t, err)
	}
	_, err = records.Insert(models.KindOutgoing, models.Record{
		"description": "Groceries", "amount": 30, "date": "2024-01-20", "category": "Food",
	})
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReport(t *testing.T) {
	dbPath, _ := setupEnv(t)
	seedStore(t, dbPath)

	out, err := run(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Total income")
	assert.Contains(t, out, "150.00 EUR")
	assert.Contains(t, out, "120.00 EUR")
}

func TestReport_JSON(t *testing.T) {
	dbPath, _ := setupEnv(t)
	seedStore(t, dbPath)

	out, err := run(t, "report", "--json")
	require.NoError(t, err)

	var r struct {
		Currency  string `json:"currency"`
		Dashboard struct {
			TotalIncome   float64 `json:"totalIncome"`
			TotalOutgoing float64 `json:"totalOutgoing"`
			Balance       float64 `json:"balance"`
		} `json:"dashboard"`
		Predictions struct {
			CurrentBalance float64 `json:"currentBalance"`
		} `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "EUR", r.Currency)
	assert.Equal(t, 150.0, r.Dashboard.TotalIncome)
	assert.Equal(t, 30.0, r.Dashboard.TotalOutgoing)
	assert.Equal(t, 120.0, r.Dashboard.Balance)
	assert.Equal(t, 120.0, r.Predictions.CurrentBalance)
}

func TestExport_CSV(t *testing.T) {
	dbPath, exportDir := setupEnv(t)
	seedStore(t, dbPath)

	out, err := run(t, "export", "income")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, exportDir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Description,Category,Provider,Amount\n"))
	assert.Contains(t, string(data), "2024-02-01,Bonus,,,50")

	target := filepath.Join(t.TempDir(), "out", "expenses.csv")
	out, err = run(t, "export", "outgoing", "-o", target)
	require.NoError(t, err)
	assert.Equal(t, target, strings.TrimSpace(out))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-20,Groceries,Food,,No,30")
}

func TestExport_History(t *testing.T) {
	dbPath, exportDir := setupEnv(t)
	seedStore(t, dbPath)

	_, err := run(t, "export", "history")
	assert.Error(t, err)

	out, err := run(t, "export", "history", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(exportDir, "history_2024-01-01_2024-01-31.xlsx"), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExport_UnknownKind(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "export", "settings")
	assert.Error(t, err)
}

func TestServe_BootstrapFailure(t *testing.T) {
	dbPath, _ := setupEnv(t)
	require.NoError(t, os.WriteFile(dbPath, bytes.Repeat([]byte("not a database "), 64), 0o644))

	_, err := run(t, "serve", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), dbPath)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", normalizePort("8080"))
	assert.Equal(t, ":8080", normalizePort(":8080"))
	assert.Equal(t, "0.0.0.0:1", normalizePort("0.0.0.0:1"))
}
