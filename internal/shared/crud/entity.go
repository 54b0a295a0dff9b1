// Package crud is the generic repository and router engine. Each resource is
// a configuration record, Entity, and the engine supplies persistence and
// HTTP behavior for it.
package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Apurer/go-gin-supply-api/internal/platform/sqlbuilder"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

// Kind is the storage shape of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	// KindDate is a calendar date rendered as YYYY-MM-DD.
	KindDate
)

const dateLayout = "2006-01-02"

// Column describes one writable attribute of an entity.
type Column struct {
	// Field is the camelCase name; the storage column is its snake_case form.
	Field    string
	Kind     Kind
	Required bool
	// Rules are validator tags checked against present, non-null values.
	Rules string
}

// ForeignKey exposes GET /<path>/<Route>/:value listing rows whose Field
// equals value.
type ForeignKey struct {
	Route string
	Field string
}

// Derived is a read-only sub-resource computed from a stored entity and
// served at GET /<path>/:id/<Name>.
type Derived[T any] struct {
	Name    string
	Compute func(ctx context.Context, item T) (any, error)
}

// Action is a restricted update served at PUT /<path>/:id/<Name>. Every
// listed field must be supplied and no others are accepted.
type Action struct {
	Name   string
	Fields []string
}

// Entity configures the engine for one resource.
type Entity[T any] struct {
	Name        string
	Path        string
	Table       string
	IDField     string
	Columns     []Column
	ForeignKeys []ForeignKey
	Derived     []Derived[T]
	Actions     []Action
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// IDColumn is the storage name of the identifier.
func (e Entity[T]) IDColumn() string {
	return sqlbuilder.ToSnakeCase(e.IDField)
}

// Label renders Name for messages: DeliveryVehicle becomes "delivery vehicle".
func (e Entity[T]) Label() string {
	var b strings.Builder
	for i, r := range e.Name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (e Entity[T]) column(field string) (Column, bool) {
	for _, col := range e.Columns {
		if col.Field == field {
			return col, true
		}
	}
	return Column{}, false
}

// columns includes the identifier so row normalization sees it.
func (e Entity[T]) columns() []Column {
	all := make([]Column, 0, len(e.Columns)+1)
	all = append(all, Column{Field: e.IDField, Kind: KindInt})
	return append(all, e.Columns...)
}

// CreateFields shapes a decoded request body into insert fields in column
// order. Required columns must be present and non-null.
func (e Entity[T]) CreateFields(body map[string]any) (sqlbuilder.Fields, error) {
	if err := e.rejectUnknown(body, nil); err != nil {
		return nil, err
	}
	fields := make(sqlbuilder.Fields, 0, len(body))
	for _, col := range e.Columns {
		raw, ok := body[col.Field]
		if col.Required && (!ok || raw == nil) {
			return nil, apperrors.NewValidation(col.Field, "is required")
		}
		if !ok {
			continue
		}
		value, err := col.coerce(raw)
		if err != nil {
			return nil, err
		}
		fields = append(fields, sqlbuilder.Field{Name: col.Field, Value: value})
	}
	return fields, nil
}

// UpdateFields shapes a partial update. Only present fields are returned;
// required columns may be omitted but not nulled.
func (e Entity[T]) UpdateFields(body map[string]any) (sqlbuilder.Fields, error) {
	if err := e.rejectUnknown(body, nil); err != nil {
		return nil, err
	}
	return e.presentFields(body, e.Columns)
}

// ActionFields shapes the body of an action: exactly the action's fields.
func (e Entity[T]) ActionFields(action Action, body map[string]any) (sqlbuilder.Fields, error) {
	if err := e.rejectUnknown(body, action.Fields); err != nil {
		return nil, err
	}
	cols := make([]Column, 0, len(action.Fields))
	for _, name := range action.Fields {
		col, ok := e.column(name)
		if !ok {
			return nil, fmt.Errorf("action %s references unknown field %q", action.Name, name)
		}
		if raw, present := body[name]; !present || raw == nil {
			return nil, apperrors.NewValidation(name, "is required")
		}
		cols = append(cols, col)
	}
	return e.presentFields(body, cols)
}

func (e Entity[T]) presentFields(body map[string]any, cols []Column) (sqlbuilder.Fields, error) {
	fields := make(sqlbuilder.Fields, 0, len(body))
	for _, col := range cols {
		raw, ok := body[col.Field]
		if !ok {
			continue
		}
		if raw == nil && col.Required {
			return nil, apperrors.NewValidation(col.Field, "cannot be null")
		}
		value, err := col.coerce(raw)
		if err != nil {
			return nil, err
		}
		fields = append(fields, sqlbuilder.Field{Name: col.Field, Value: value})
	}
	return fields, nil
}

// rejectUnknown fails on the identifier and on keys outside allowed, or
// outside the entity's columns when allowed is nil.
func (e Entity[T]) rejectUnknown(body map[string]any, allowed []string) error {
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == e.IDField {
			return apperrors.NewValidation(key, "is assigned by the store")
		}
		known := false
		if allowed != nil {
			for _, name := range allowed {
				known = known || name == key
			}
		} else {
			_, known = e.column(key)
		}
		if !known {
			return apperrors.NewValidation(key, "unknown field")
		}
	}
	return nil
}

// coerce converts a JSON value to the column's storage value and applies
// its rules. Null passes through.
func (c Column) coerce(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	var (
		value any
		err   error
	)
	switch c.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			err = errors.New("must be a string")
		}
		value = s
	case KindInt:
		value, err = toInt64(raw)
	case KindFloat:
		value, err = toFloat64(raw)
	case KindBool:
		value, err = toBool(raw)
	case KindDate:
		value, err = toDate(raw)
	default:
		err = fmt.Errorf("unsupported kind %d", c.Kind)
	}
	if err != nil {
		return nil, apperrors.NewValidation(c.Field, err.Error())
	}
	if c.Rules != "" {
		if verr := validate.Var(value, c.Rules); verr != nil {
			return nil, apperrors.NewValidation(c.Field, describeRules(verr))
		}
	}
	return value, nil
}

func describeRules(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err.Error()
	}
	fe := ves[0]
	if fe.Param() != "" {
		return fmt.Sprintf("failed the '%s=%s' rule", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed the '%s' rule", fe.Tag())
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, errors.New("must be an integer")
		}
		return toInt64(f)
	case float64:
		// 2^63 is exactly representable; MaxInt64 is not.
		if v != math.Trunc(v) || v < math.MinInt64 || v >= -math.MinInt64 {
			return 0, errors.New("must be an integer")
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, errors.New("must be an integer")
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, errors.New("must be a number")
		}
		return f, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, errors.New("must be a number")
}

// toBool also accepts 0 and 1, which is how clients that mirror the sqlite
// schema send flags.
func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case json.Number, float64, int, int64:
		n, err := toInt64(v)
		if err == nil && (n == 0 || n == 1) {
			return n == 1, nil
		}
	}
	return false, errors.New("must be a boolean")
}

func toDate(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", errors.New("must be a date string")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", errors.New("must be a date in YYYY-MM-DD form")
}
