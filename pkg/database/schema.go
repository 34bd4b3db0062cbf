package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrSchemaMismatch is returned when the live schema lacks tables or columns
// the models expect.
var ErrSchemaMismatch = errors.New("database schema does not match the application models")

// Remediation is shown to operators when the schema check fails.
const Remediation = "run `admin migrate` (or start the server with db.auto_migrate=true) to apply the versioned migrations"

// ColumnMapper is implemented by models whose columns are addressed by API
// field names. CheckSchema requires every mapped column and reports the
// missing ones by field name as well.
type ColumnMapper interface {
	MappedColumns() []string
	FieldForColumn(column string) (string, bool)
}

// TableReport describes one expected table.
type TableReport struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missingColumns,omitempty"`
	MissingFields  []string `json:"missingFields,omitempty"`
}

// SchemaReport is the result of comparing expected against actual columns.
type SchemaReport struct {
	OK          bool          `json:"ok"`
	Tables      []TableReport `json:"tables"`
	Remediation string        `json:"remediation,omitempty"`
}

// Err returns ErrSchemaMismatch wrapped with the offending tables and columns,
// or nil when the schema is complete.
func (r *SchemaReport) Err() error {
	if r.OK {
		return nil
	}
	var parts []string
	for _, t := range r.Tables {
		switch {
		case !t.Exists:
			parts = append(parts, "missing table "+t.Table)
		case len(t.MissingColumns) > 0:
			parts = append(parts, fmt.Sprintf("%s missing columns %s", t.Table, strings.Join(t.MissingColumns, ", ")))
		}
	}
	return fmt.Errorf("%w: %s; %s", ErrSchemaMismatch, strings.Join(parts, "; "), Remediation)
}

// CheckSchema compares the columns each model maps to with the columns the
// database reports. Nothing is created or altered.
func CheckSchema(ctx context.Context, db *gorm.DB, models ...interface{}) (*SchemaReport, error) {
	db = db.WithContext(ctx)
	report := &SchemaReport{OK: true}

	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}
		table := stmt.Schema.Table
		tr := TableReport{Table: table}

		if !db.Migrator().HasTable(table) {
			report.OK = false
			report.Tables = append(report.Tables, tr)
			continue
		}
		tr.Exists = true

		cols, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		actual := make(map[string]bool, len(cols))
		for _, c := range cols {
			actual[strings.ToLower(c.Name())] = true
		}
		expected := append([]string(nil), stmt.Schema.DBNames...)
		mapper, mapped := m.(ColumnMapper)
		if mapped {
			expected = append(expected, mapper.MappedColumns()...)
		}
		seen := make(map[string]bool, len(expected))
		for _, name := range expected {
			key := strings.ToLower(name)
			if seen[key] || actual[key] {
				continue
			}
			seen[key] = true
			tr.MissingColumns = append(tr.MissingColumns, name)
			if mapped {
				if field, ok := mapper.FieldForColumn(name); ok {
					tr.MissingFields = append(tr.MissingFields, field)
				}
			}
		}
		if len(tr.MissingColumns) > 0 {
			sort.Strings(tr.MissingColumns)
			sort.Strings(tr.MissingFields)
			report.OK = false
		}
		report.Tables = append(report.Tables, tr)
	}

	if !report.OK {
		report.Remediation = Remediation
	}
	return report, nil
}
