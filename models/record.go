package models

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateLayout ISO calendar date used by every date column
const DateLayout = "2006-01-02"

// TimestampLayout ISO-8601 UTC with milliseconds, used for createdAt/updatedAt
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one row of a gateway kind, keyed by column name.
type Record map[string]interface{}

// ID returns the row id, 0 when unset.
func (r Record) ID() int64 {
	id, _ := cast.ToInt64E(r["id"])
	return id
}

// ColumnType storage class of a writable column
type ColumnType int

const (
	Text ColumnType = iota
	Real
	Bool
)

// Column describes a writable column of a gateway kind.
type Column struct {
	Name     string
	Type     ColumnType
	Required bool
	Date     bool
	Enum     []string
}

// Reserved columns are assigned by the store and ignored on input.
var reserved = map[string]bool{"id": true, "createdAt": true, "updatedAt": true}

var transactionColumns = []Column{
	{Name: "description", Type: Text, Required: true},
	{Name: "amount", Type: Real, Required: true},
	{Name: "date", Type: Text, Required: true, Date: true},
	{Name: "category", Type: Text},
	{Name: "provider", Type: Text},
	{Name: "icon", Type: Text},
}

var outgoingColumns = append(append([]Column{}, transactionColumns...),
	Column{Name: "recurring", Type: Bool},
	Column{Name: "billingCycle", Type: Text, Enum: GetBillingCycles()},
	Column{Name: "nextPaymentDate", Type: Text, Date: true},
)

var providerColumns = []Column{
	{Name: "name", Type: Text, Required: true},
	{Name: "type", Type: Text, Required: true, Enum: GetProviderTypes()},
	{Name: "accountNumber", Type: Text},
	{Name: "notes", Type: Text},
	{Name: "icon", Type: Text},
}

// Normalize validates caller fields for kind and returns the complete set of writable
// columns. base is the stored row for an update and nil for an insert; fields absent from
// the input keep their base value.
func Normalize(kind Kind, fields Record, base Record) (Record, error) {
	cols := kind.Columns()
	if cols == nil {
		return nil, ErrInvalidKind
	}

	for name := range fields {
		if reserved[name] {
			continue
		}
		if _, ok := kind.Column(name); !ok {
			return nil, Invalid(name, "unknown field")
		}
	}

	out := Record{}
	for _, col := range cols {
		raw, given := fields[col.Name]
		if !given {
			out[col.Name] = decodeValue(col, base[col.Name])
			continue
		}
		v, err := convert(col, raw)
		if err != nil {
			return nil, err
		}
		out[col.Name] = v
	}

	for _, col := range cols {
		if col.Required && isBlank(out[col.Name]) {
			return nil, Invalid(col.Name, "is required")
		}
	}

	if kind == KindOutgoing {
		if err := normalizeRecurring(out); err != nil {
			return nil, err
		}
	}

	// stored as 0/1
	for _, col := range cols {
		if col.Type == Bool {
			if b, _ := out[col.Name].(bool); b {
				out[col.Name] = 1
			} else {
				out[col.Name] = 0
			}
		}
	}
	return out, nil
}

// Check validates a partial update without the stored row: every field must be a known
// column with a valid value and required columns cannot be blanked.
func Check(kind Kind, fields Record) error {
	if kind.Columns() == nil {
		return ErrInvalidKind
	}
	for name, raw := range fields {
		if reserved[name] {
			continue
		}
		col, ok := kind.Column(name)
		if !ok {
			return Invalid(name, "unknown field")
		}
		v, err := convert(col, raw)
		if err != nil {
			return err
		}
		if col.Required && isBlank(v) {
			return Invalid(name, "is required")
		}
	}
	return nil
}

func convert(col Column, raw interface{}) (interface{}, error) {
	switch col.Type {
	case Real:
		if raw == nil {
			return nil, nil
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, Invalid(col.Name, "must be a number")
		}
		return f, nil
	case Bool:
		if raw == nil {
			return false, nil
		}
		b, err := toBool(raw)
		if err != nil {
			return nil, Invalid(col.Name, "must be a boolean")
		}
		return b, nil
	}

	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, Invalid(col.Name, "must be a string")
	}
	if s == "" {
		return s, nil
	}
	if col.Date {
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, Invalid(col.Name, "must be a YYYY-MM-DD date")
		}
	}
	if len(col.Enum) > 0 && !contains(col.Enum, s) {
		return nil, Invalid(col.Name, "must be one of %s", strings.Join(col.Enum, ", "))
	}
	return s, nil
}

// normalizeRecurring keeps billingCycle/nextPaymentDate present only on recurring rows.
func normalizeRecurring(r Record) error {
	recurring, _ := r["recurring"].(bool)
	if !recurring {
		r["billingCycle"] = nil
		r["nextPaymentDate"] = nil
		return nil
	}

	cycle, _ := r["billingCycle"].(string)
	if cycle == "" {
		cycle = BillingMonthly
		r["billingCycle"] = cycle
	}
	if next, _ := r["nextPaymentDate"].(string); next == "" {
		from, err := time.Parse(DateLayout, r["date"].(string))
		if err != nil {
			return Invalid("date", "must be a YYYY-MM-DD date")
		}
		r["nextPaymentDate"] = NextPaymentDate(cycle, from).Format(DateLayout)
	}
	return nil
}

// Decode converts a scanned row into its API shape.
func Decode(kind Kind, row map[string]interface{}) Record {
	if row == nil {
		return nil
	}
	out := Record{}
	for k, v := range row {
		out[k] = v
	}
	out["id"] = cast.ToInt64(row["id"])
	for _, col := range kind.Columns() {
		out[col.Name] = decodeValue(col, row[col.Name])
	}
	for _, name := range []string{"createdAt", "updatedAt"} {
		out[name] = decodeValue(Column{Type: Text}, row[name])
	}
	return out
}

func decodeValue(col Column, v interface{}) interface{} {
	switch col.Type {
	case Real:
		if v == nil {
			return nil
		}
		return cast.ToFloat64(v)
	case Bool:
		b, _ := toBool(v)
		return b
	}
	switch s := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(s)
	default:
		return cast.ToString(s)
	}
}

// toBool accepts booleans, numbers (non-zero is true) and strconv.ParseBool strings.
func toBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		return cast.ToBoolE(b)
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func isBlank(v interface{}) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
