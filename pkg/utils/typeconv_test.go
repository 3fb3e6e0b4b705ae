package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

func TestBaseTypeName(t *testing.T) {
	assert.Equal(t, "DECIMAL", BaseTypeName("decimal(10,2)"))
	assert.Equal(t, "BIGINT", BaseTypeName("UNSIGNED BIGINT"))
	assert.Equal(t, "VARCHAR", BaseTypeName(" varchar "))
	assert.Equal(t, "", BaseTypeName(""))
}

func TestToValueDriverTypes(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

	cases := []struct {
		name   string
		raw    any
		dbType string
		kind   models.Kind
		text   string
	}{
		{"null", nil, "VARCHAR", models.KindNull, "NULL"},
		{"text bytes", []byte("hello"), "VARCHAR", models.KindText, "hello"},
		{"text string", "hello", "NVARCHAR", models.KindText, "hello"},
		{"decimal bytes", []byte("12345.6700"), "DECIMAL", models.KindDecimal, "12345.6700"},
		{"decimal string", "0.50", "NUMERIC", models.KindDecimal, "0.50"},
		{"int bytes", []byte("42"), "INT", models.KindInteger, "42"},
		{"unsigned overflow", []byte("18446744073709551615"), "UNSIGNED BIGINT", models.KindDecimal, "18446744073709551615"},
		{"float bytes", []byte("1.25"), "DOUBLE", models.KindFloat, "1.25"},
		{"int64", int64(7), "BIGINT", models.KindInteger, "7"},
		{"uint64 overflow", uint64(math.MaxUint64), "BIGINT", models.KindDecimal, "18446744073709551615"},
		{"float64", 2.5, "FLOAT", models.KindFloat, "2.5"},
		{"bool", true, "BIT", models.KindBool, "true"},
		{"time", ts, "DATETIME", models.KindTimestamp, "2024-01-02 03:04:05"},
		{"raw datetime", []byte("2024-01-02 03:04:05.678"), "DATETIME", models.KindTimestamp, "2024-01-02 03:04:05"},
		{"zero date text", []byte("0000-00-00 00:00:00"), "DATETIME", models.KindText, "0000-00-00 00:00:00"},
		{"date", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "DATE", models.KindText, "2024-01-02"},
		{"raw date", []byte("2024-01-02"), "DATE", models.KindText, "2024-01-02"},
		{"raw zero date", []byte("0000-00-00"), "DATE", models.KindText, "0000-00-00"},
		{"zero time datetime", time.Time{}, "DATETIME", models.KindText, "0000-00-00 00:00:00"},
		{"zero time timestamp", time.Time{}, "TIMESTAMP", models.KindText, "0000-00-00 00:00:00"},
		{"zero time date", time.Time{}, "DATE", models.KindText, "0000-00-00"},
		{"blob", []byte{0xde, 0xad}, "BLOB", models.KindBytes, "dead"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ToValue(tc.raw, tc.dbType)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.text, v.String())
		})
	}
}

func TestToValueBlobIsCopied(t *testing.T) {
	raw := []byte{1, 2, 3}
	v, err := ToValue(raw, "BLOB")
	require.NoError(t, err)

	raw[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, v.Any())
}

func TestToValueUnsupported(t *testing.T) {
	_, err := ToValue(struct{}{}, "JSON")
	assert.Error(t, err)
}

func TestConvertDecimalRejectsGarbage(t *testing.T) {
	_, err := ConvertDecimal("12,5")
	assert.Error(t, err)
}
