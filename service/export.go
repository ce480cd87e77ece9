package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fintrack/database"
	"fintrack/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportService CSV and workbook export of the transaction tables
type ExportService struct {
	store *database.Store
	dir   string
}

// NewExportService creates the exporter writing into dir
func NewExportService(store *database.Store, dir string) *ExportService {
	return &ExportService{store: store, dir: dir}
}

// Dir returns the export directory.
func (s *ExportService) Dir() string {
	return s.dir
}

// Income returns every income row, newest date first.
func (s *ExportService) Income() ([]models.Income, error) {
	rows := []models.Income{}
	err := s.store.Read(func(db *gorm.DB) error {
		return db.Order("date DESC").Order("id DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load income: %w", err)
	}
	return rows, nil
}

// Outgoing returns every outgoing row, newest date first.
func (s *ExportService) Outgoing() ([]models.Outgoing, error) {
	rows := []models.Outgoing{}
	err := s.store.Read(func(db *gorm.DB) error {
		return db.Order("date DESC").Order("id DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load outgoing: %w", err)
	}
	return rows, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName reduces name to a plain file name ending in .csv.
func SanitizeFileName(name, fallback string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = fallback
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}

// WriteCSV writes content as name inside the export directory and returns the path.
func (s *ExportService) WriteCSV(name, content string) (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("export directory is not configured")
	}
	name = SanitizeFileName(name, "export_"+s.store.Today().Format(models.DateLayout))
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// IncomeCSV renders rows with the Date,Description,Category,Provider,Amount header.
func IncomeCSV(rows []models.Income) (string, error) {
	records := [][]string{{"Date", "Description", "Category", "Provider", "Amount"}}
	for _, r := range rows {
		records = append(records, []string{r.Date, r.Description, deref(r.Category), deref(r.Provider), formatAmount(r.Amount)})
	}
	return writeCSV(records)
}

// OutgoingCSV renders rows like IncomeCSV with an extra Recurring column.
func OutgoingCSV(rows []models.Outgoing) (string, error) {
	records := [][]string{{"Date", "Description", "Category", "Provider", "Recurring", "Amount"}}
	for _, r := range rows {
		recurring := "No"
		if r.Recurring {
			recurring = "Yes"
		}
		records = append(records, []string{r.Date, r.Description, deref(r.Category), deref(r.Provider), recurring, formatAmount(r.Amount)})
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) (string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return buf.String(), nil
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Workbook sheet names
const (
	SheetIncome     = "Income"
	SheetOutgoing   = "Outgoing"
	SheetCategories = "Categories"
)

type sheetStyles struct {
	header, data, summary int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	var st sheetStyles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return st, err
	}
	if st.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	}); err != nil {
		return st, err
	}
	st.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	})
	return st, err
}

// writeSheet fills sheet with a styled header, the rows and a bold total row whose value
// sits in the last column.
func writeSheet(f *excelize.File, sheet string, st sheetStyles, headers []string, rows [][]interface{}, total float64) error {
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", r+2), fmt.Sprintf("%s%d", last, r+2), st.data); err != nil {
			return err
		}
	}

	summary := len(rows) + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", summary), "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", last, summary), total); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", summary), fmt.Sprintf("%s%d", last, summary), st.summary)
}

// HistoryWorkbook renders a history range as an XLSX workbook with Income, Outgoing and
// Categories sheets.
func HistoryWorkbook(h *History) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetIncome); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetOutgoing, SheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	income := make([][]interface{}, 0, len(h.Income))
	for _, r := range h.Income {
		income = append(income, []interface{}{r.Date, r.Description, deref(r.Category), deref(r.Provider), r.Amount})
	}
	if err := writeSheet(f, SheetIncome, st, []string{"Date", "Description", "Category", "Provider", "Amount"}, income, h.IncomeTotal); err != nil {
		return nil, err
	}

	outgoing := make([][]interface{}, 0, len(h.Outgoing))
	for _, r := range h.Outgoing {
		recurring := "No"
		if r.Recurring {
			recurring = "Yes"
		}
		outgoing = append(outgoing, []interface{}{r.Date, r.Description, deref(r.Category), deref(r.Provider), recurring, r.Amount})
	}
	if err := writeSheet(f, SheetOutgoing, st, []string{"Date", "Description", "Category", "Provider", "Recurring", "Amount"}, outgoing, h.OutgoingTotal); err != nil {
		return nil, err
	}

	categories := make([][]interface{}, 0, len(h.CategoryBreakdown))
	for _, c := range h.CategoryBreakdown {
		categories = append(categories, []interface{}{c.Category, c.Total})
	}
	if err := writeSheet(f, SheetCategories, st, []string{"Category", "Amount"}, categories, h.OutgoingTotal); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
