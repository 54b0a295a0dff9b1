// Package sqlbuilder builds parameterized statements from ordered field lists
// and converts between snake_case storage names and camelCase domain names.
package sqlbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrNoFields is returned when a statement would touch no columns.
var ErrNoFields = errors.New("no fields provided")

// Field is a single camelCase name bound to a value.
type Field struct {
	Name  string
	Value any
}

// Fields keeps insertion order explicit; placeholders follow slice order.
type Fields []Field

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for _, field := range f {
		names = append(names, field.Name)
	}
	return names
}

// Lookup returns the value bound to name, if present.
func (f Fields) Lookup(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Row is a flat record keyed by column or field name.
type Row = map[string]any

// Statement is SQL text plus its positional arguments.
type Statement struct {
	SQL    string
	Values []any
}

// With returns a copy of the statement with args appended, typically the
// where-clause parameters of an update.
func (s Statement) With(args ...any) Statement {
	values := make([]any, 0, len(s.Values)+len(args))
	values = append(values, s.Values...)
	values = append(values, args...)
	return Statement{SQL: s.SQL, Values: values}
}

// BuildInsertSQL renders INSERT INTO table (cols) VALUES (?, ...).
func BuildInsertSQL(table string, fields Fields) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, fmt.Errorf("insert into %s: %w", table, ErrNoFields)
	}
	columns := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, ToSnakeCase(field.Name))
		placeholders = append(placeholders, "?")
		values = append(values, field.Value)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return Statement{SQL: sql, Values: values}, nil
}

// BuildUpdateSQL renders UPDATE table SET col = ?, ... WHERE where. Only the
// supplied fields are assigned.
func BuildUpdateSQL(table string, fields Fields, where string) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, fmt.Errorf("update %s: %w", table, ErrNoFields)
	}
	assignments := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, ToSnakeCase(field.Name)+" = ?")
		values = append(values, field.Value)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)
	return Statement{SQL: sql, Values: values}, nil
}

// ToSnakeCase converts deliveryVehicleId to delivery_vehicle_id.
func ToSnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelCase converts delivery_vehicle_id to deliveryVehicleId.
func ToCamelCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ObjectToCamelCase renames every key of row. Values are untouched and keys
// outside any schema are converted the same way.
func ObjectToCamelCase(row Row) Row {
	if row == nil {
		return nil
	}
	out := make(Row, len(row))
	for key, value := range row {
		out[ToCamelCase(key)] = value
	}
	return out
}

// MapDatabaseRows applies ObjectToCamelCase to each row, preserving order.
func MapDatabaseRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, ObjectToCamelCase(row))
	}
	return out
}
