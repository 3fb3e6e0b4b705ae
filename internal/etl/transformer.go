package etl

import (
	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// Normalize rewrites the values SQLite has no type for as text: timestamps
// become "YYYY-MM-DD HH:MM:SS" (sub-second precision and zone are dropped)
// and decimals their canonical decimal string. The row is changed in place
// and returned.
func Normalize(row models.Row) models.Row {
	for col, v := range row {
		switch v.Kind() {
		case models.KindTimestamp:
			t, _ := v.Time()
			row[col] = models.Text(t.Format(models.TimestampLayout))
		case models.KindDecimal:
			d, _ := v.Dec()
			row[col] = models.Text(models.DecimalText(d))
		}
	}
	return row
}

// NormalizePage normalizes every row of p.
func NormalizePage(p *models.Page) {
	for _, row := range p.Rows {
		Normalize(row)
	}
}
