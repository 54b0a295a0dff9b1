package crud

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-gin-supply-api/internal/platform/sqlbuilder"
)

// decodeRows turns raw scanned rows into entities. Drivers disagree on the
// Go types they hand back (sqlite has no boolean, postgres DATE arrives as
// time.Time), so values are first normalized per column kind.
func (e Entity[T]) decodeRows(rows []sqlbuilder.Row) ([]T, error) {
	items := make([]T, 0, len(rows))
	for _, row := range sqlbuilder.MapDatabaseRows(rows) {
		item, err := e.decodeRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (e Entity[T]) decodeRow(row sqlbuilder.Row) (T, error) {
	var item T
	for _, col := range e.columns() {
		value, ok := row[col.Field]
		if !ok || value == nil {
			continue
		}
		normalized, err := normalize(col.Kind, value)
		if err != nil {
			return item, fmt.Errorf("decode %s.%s: %w", e.Name, col.Field, err)
		}
		row[col.Field] = normalized
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return item, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	return item, nil
}

func normalize(kind Kind, value any) (any, error) {
	value = indirect(value)
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	switch kind {
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case int32:
			return v != 0, nil
		case int:
			return v != 0, nil
		case float64:
			return v != 0, nil
		case string:
			return strconv.ParseBool(v)
		}
	case KindInt:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int32:
			return int64(v), nil
		case int:
			return int64(v), nil
		case float64:
			return int64(v), nil
		case string:
			return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		}
	case KindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case KindDate:
		switch v := value.(type) {
		case time.Time:
			return v.Format(dateLayout), nil
		case string:
			if len(v) >= len(dateLayout) {
				if _, err := time.Parse(dateLayout, v[:len(dateLayout)]); err == nil {
					return v[:len(dateLayout)], nil
				}
			}
			return v, nil
		}
	case KindString:
		switch v := value.(type) {
		case string:
			return v, nil
		case time.Time:
			return v.Format(time.RFC3339), nil
		}
		return fmt.Sprint(value), nil
	}
	return nil, fmt.Errorf("unexpected %T for kind %d", value, kind)
}

// indirect unwraps pointers. sqlite declares no type for expression columns
// such as COUNT(*), so map scans hand those back as *interface{}.
func indirect(value any) any {
	for value != nil {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Pointer {
			return value
		}
		if rv.IsNil() {
			return nil
		}
		value = rv.Elem().Interface()
	}
	return nil
}

// existsFromCount reads a COUNT(*) AS count result. A missing row or a null
// count means the entity does not exist.
func existsFromCount(rows []sqlbuilder.Row) bool {
	if len(rows) == 0 {
		return false
	}
	value, ok := rows[0]["count"]
	if !ok || value == nil {
		return false
	}
	n, err := normalize(KindInt, value)
	if err != nil || n == nil {
		return false
	}
	return n.(int64) > 0
}
