package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
	"github.com/shopspring/decimal"
)

var decimalTypes = map[string]bool{
	"DECIMAL":    true,
	"NUMERIC":    true,
	"MONEY":      true,
	"SMALLMONEY": true,
}

var binaryTypes = map[string]bool{
	"BLOB":             true,
	"TINYBLOB":         true,
	"MEDIUMBLOB":       true,
	"LONGBLOB":         true,
	"BINARY":           true,
	"VARBINARY":        true,
	"IMAGE":            true,
	"BIT":              true,
	"GEOMETRY":         true,
	"UNIQUEIDENTIFIER": true,
}

var intTypes = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"INT":       true,
	"INTEGER":   true,
	"BIGINT":    true,
	"YEAR":      true,
}

var floatTypes = map[string]bool{
	"FLOAT":  true,
	"DOUBLE": true,
	"REAL":   true,
}

var timeTypes = map[string]bool{
	"DATETIME":  true,
	"DATETIME2": true,
	"TIMESTAMP": true,
	"DATE":      true,
}

// rawTimeLayouts covers DATETIME/TIMESTAMP text when the driver hands back
// bytes instead of time.Time (mysql without parseTime).
var rawTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BaseTypeName upper-cases a driver type name and strips any parameters,
// so "decimal(10,2) unsigned" becomes "DECIMAL".
func BaseTypeName(dbType string) string {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	t = strings.TrimPrefix(t, "UNSIGNED ")
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}
	return t
}

// ToValue converts a value scanned into an interface{} by database/sql into
// a tagged models.Value. dbType is the column's DatabaseTypeName.
func ToValue(raw any, dbType string) (models.Value, error) {
	base := BaseTypeName(dbType)

	switch v := raw.(type) {
	case nil:
		return models.Null(), nil
	case []byte:
		switch {
		case decimalTypes[base]:
			return ConvertDecimal(string(v))
		case binaryTypes[base]:
			b := make([]byte, len(v))
			copy(b, v)
			return models.Bytes(b), nil
		case intTypes[base]:
			if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
				return models.Integer(i), nil
			}
			if u, err := strconv.ParseUint(string(v), 10, 64); err == nil {
				return models.Decimal(decimal.RequireFromString(strconv.FormatUint(u, 10))), nil
			}
			return models.Text(string(v)), nil
		case floatTypes[base]:
			if f, err := strconv.ParseFloat(string(v), 64); err == nil {
				return models.Float(f), nil
			}
			return models.Text(string(v)), nil
		case timeTypes[base]:
			if t, ok := ParseRawTime(string(v)); ok {
				return timeValue(t, base), nil
			}
			return models.Text(string(v)), nil
		default:
			return models.Text(string(v)), nil
		}
	case string:
		if decimalTypes[base] {
			return ConvertDecimal(v)
		}
		return models.Text(v), nil
	case int64:
		return models.Integer(v), nil
	case int32:
		return models.Integer(int64(v)), nil
	case int16:
		return models.Integer(int64(v)), nil
	case int8:
		return models.Integer(int64(v)), nil
	case int:
		return models.Integer(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return models.Decimal(decimal.RequireFromString(strconv.FormatUint(v, 10))), nil
		}
		return models.Integer(int64(v)), nil
	case uint32:
		return models.Integer(int64(v)), nil
	case float64:
		if decimalTypes[base] {
			return models.Decimal(decimal.NewFromFloat(v)), nil
		}
		return models.Float(v), nil
	case float32:
		return models.Float(float64(v)), nil
	case bool:
		return models.Bool(v), nil
	case time.Time:
		return timeValue(v, base), nil
	case decimal.Decimal:
		return models.Decimal(v), nil
	default:
		return models.Null(), fmt.Errorf("cannot convert %T (%s) to a column value", raw, dbType)
	}
}

// timeValue keeps DATE columns date-only and turns the zero time, which the
// mysql driver returns for zero dates when parseTime is on, back into
// MySQL's zero-date text.
func timeValue(t time.Time, base string) models.Value {
	switch {
	case t.IsZero() && base == "DATE":
		return models.Text("0000-00-00")
	case t.IsZero() && timeTypes[base]:
		return models.Text("0000-00-00 00:00:00")
	case base == "DATE":
		return models.Text(t.Format(models.DateLayout))
	default:
		return models.Timestamp(t)
	}
}

// ConvertDecimal parses the textual form drivers use for DECIMAL columns.
func ConvertDecimal(s string) (models.Value, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return models.Null(), fmt.Errorf("unable to parse decimal %q: %w", s, err)
	}
	return models.Decimal(d), nil
}

// ParseRawTime parses DATETIME text as wall-clock time.
func ParseRawTime(s string) (time.Time, bool) {
	for _, layout := range rawTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
