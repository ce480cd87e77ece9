package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintrack/models"
)

func strPtr(s string) *string { return &s }

func TestIncomeCSV(t *testing.T) {
	out, err := IncomeCSV([]models.Income{
		{Date: "2024-01-15", Description: `Salary "January"`, Category: strPtr("Work"), Amount: 2500.5},
		{Date: "2024-01-02", Description: "Coffee, large", Amount: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Category,Provider,Amount\n"+
		"2024-01-15,\"Salary \"\"January\"\"\",Work,,2500.5\n"+
		"2024-01-02,\"Coffee, large\",,,4\n", out)

	empty, err := IncomeCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Category,Provider,Amount\n", empty)
}

func TestOutgoingCSV(t *testing.T) {
	out, err := OutgoingCSV([]models.Outgoing{
		{Date: "2024-02-01", Description: "Rent", Provider: strPtr("Bank"), Recurring: true, Amount: 900},
		{Date: "2024-02-03", Description: "Lunch", Amount: 12.3},
	})
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Category,Provider,Recurring,Amount\n"+
		"2024-02-01,Rent,,Bank,Yes,900\n"+
		"2024-02-03,Lunch,,,No,12.3\n", out)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "income_export_2024-01-20.csv", SanitizeFileName("income_export_2024-01-20.csv", "x"))
	assert.Equal(t, "passwd.csv", SanitizeFileName("../../etc/passwd", "x"))
	assert.Equal(t, "my_report.csv", SanitizeFileName("my report", "x"))
	assert.Equal(t, "fallback.csv", SanitizeFileName("  ", "fallback"))
}

func TestExportService_WriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewExportService(newTestStore(t, jan2024), dir)

	path, err := svc.WriteCSV("expenses.csv", "a,b\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "expenses.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	path, err = svc.WriteCSV("", "x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export_2024-01-20.csv"), path)

	_, err = NewExportService(newTestStore(t, jan2024), "").WriteCSV("a.csv", "x")
	assert.Error(t, err)
}

func TestExportService_Rows(t *testing.T) {
	store := newTestStore(t, jan2024)
	seed(t, store, models.KindIncome,
		models.Record{"description": "Old", "amount": 1, "date": "2023-05-01"},
		models.Record{"description": "New", "amount": 2, "date": "2024-01-01"},
	)
	svc := NewExportService(store, t.TempDir())

	income, err := svc.Income()
	require.NoError(t, err)
	require.Len(t, income, 2)
	assert.Equal(t, "New", income[0].Description)

	outgoing, err := svc.Outgoing()
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestHistoryWorkbook(t *testing.T) {
	h := &History{
		Income:            []models.Income{{Date: "2024-01-15", Description: "Salary", Amount: 100}},
		Outgoing:          []models.Outgoing{{Date: "2024-01-20", Description: "Groceries", Category: strPtr("Food"), Amount: 30}},
		IncomeTotal:       100,
		OutgoingTotal:     30,
		Net:               70,
		CategoryBreakdown: []CategoryTotal{{Category: "Food", Total: 30}},
	}

	data, err := HistoryWorkbook(h)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetIncome, SheetOutgoing, SheetCategories}, f.GetSheetList())

	v, err := f.GetCellValue(SheetIncome, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Salary", v)
	v, err = f.GetCellValue(SheetIncome, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total", v)
	v, err = f.GetCellValue(SheetIncome, "E3")
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	v, err = f.GetCellValue(SheetOutgoing, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Recurring", v)
	v, err = f.GetCellValue(SheetCategories, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Food", v)
}
