package models

import (
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

// JobConfig holds everything that shapes a migration run. It is built once
// before the run and only read afterwards.
type JobConfig struct {
	Workers        int               `yaml:"workers"`
	ExcludeTables  string            `yaml:"excludeTables"`
	ExcludeData    string            `yaml:"excludeData"`
	Where          map[string]string `yaml:"where"`
	OrderBy        map[string]string `yaml:"orderBy"`
	DefaultOrderBy string            `yaml:"defaultOrderBy"`
}

// LoadJob parses a YAML job definition.
func LoadJob(data []byte) (*JobConfig, error) {
	var j JobConfig
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Clone returns a deep copy so the maps can't be shared with the caller.
func (j JobConfig) Clone() JobConfig {
	j.Where = maps.Clone(j.Where)
	j.OrderBy = maps.Clone(j.OrderBy)
	return j
}

// FilterFor returns the row predicate for a table, or "" for all rows.
func (j JobConfig) FilterFor(table string) string {
	return strings.TrimSpace(j.Where[table])
}

// SortFor returns the table's ORDER BY clause, falling back to DefaultOrderBy
// when the table has none. "" means unsorted.
func (j JobConfig) SortFor(table string) string {
	if s := strings.TrimSpace(j.OrderBy[table]); s != "" {
		return s
	}
	return strings.TrimSpace(j.DefaultOrderBy)
}
