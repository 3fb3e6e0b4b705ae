package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecimalTextKeepsScale(t *testing.T) {
	cases := map[string]string{
		"12345.6700": "12345.6700",
		"0.10":       "0.10",
		"-3.5":       "-3.5",
		"42":         "42",
	}
	for in, want := range cases {
		assert.Equal(t, want, DecimalText(decimal.RequireFromString(in)), in)
	}
}

func TestValueAny(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Nil(t, Null().Any())
	assert.Equal(t, "abc", Text("abc").Any())
	assert.Equal(t, int64(7), Integer(7).Any())
	assert.Equal(t, 1.5, Float(1.5).Any())
	assert.Equal(t, true, Bool(true).Any())
	assert.Equal(t, []byte{1, 2}, Bytes([]byte{1, 2}).Any())
	assert.Equal(t, ts, Timestamp(ts).Any())
	assert.Equal(t, "1.50", Decimal(decimal.RequireFromString("1.50")).Any())
}

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.Equal(t, "NULL", v.String())
}

func TestPageValuesFollowColumnOrder(t *testing.T) {
	p := &Page{
		Columns: []string{"b", "a", "c"},
		Rows:    []Row{{"a": Integer(1), "b": Text("x")}},
	}

	assert.Equal(t, []any{"x", int64(1), nil}, p.Values(0))
}
