package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the textual form timestamps take in the target store.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the textual form of DATE columns, which carry no time of day.
const DateLayout = "2006-01-02"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindFloat
	KindBool
	KindBytes
	KindTimestamp
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindDecimal:
		return "decimal"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single column value read from the source. The zero Value is NULL.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	b    bool
	raw  []byte
	t    time.Time
	d    decimal.Decimal
}

func Null() Value                     { return Value{} }
func Text(s string) Value             { return Value{kind: KindText, text: s} }
func Integer(i int64) Value           { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value           { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value               { return Value{kind: KindBool, b: b} }
func Bytes(b []byte) Value            { return Value{kind: KindBytes, raw: b} }
func Timestamp(t time.Time) Value     { return Value{kind: KindTimestamp, t: t} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Time returns the instant held by a timestamp value.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindTimestamp
}

// Dec returns the number held by a decimal value.
func (v Value) Dec() (decimal.Decimal, bool) {
	return v.d, v.kind == KindDecimal
}

// Str returns the string held by a text value.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// DecimalText renders d in its canonical form, keeping the scale it was read with
// (12345.6700 stays "12345.6700").
func DecimalText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Any returns the value in a form database/sql drivers accept as a bind argument.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindBytes:
		return v.raw
	case KindTimestamp:
		return v.t
	case KindDecimal:
		return DecimalText(v.d)
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return v.text
	case KindTimestamp:
		return v.t.Format(TimestampLayout)
	case KindDecimal:
		return DecimalText(v.d)
	case KindBytes:
		return fmt.Sprintf("%x", v.raw)
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}
