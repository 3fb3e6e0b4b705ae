package etl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// Validator checks a job before anything touches the source or target.
// Filter and sort text is not inspected; it goes into queries verbatim and
// a malformed one shows up as a fetch error.
type Validator struct {
	Job models.JobConfig
}

func NewValidator(job models.JobConfig) *Validator {
	return &Validator{Job: job}
}

// Validate reports the first problem found in the job.
func (v *Validator) Validate() error {
	_, err := v.compile()
	return err
}

type tablePatterns struct {
	excludeTables *regexp.Regexp
	excludeData   *regexp.Regexp
}

func (v *Validator) compile() (tablePatterns, error) {
	var p tablePatterns

	if v.Job.Workers <= 0 {
		return p, newError(ErrConfiguration, "validate job", "", -1,
			fmt.Errorf("workers must be a positive integer, got %d", v.Job.Workers))
	}

	var err error
	if p.excludeTables, err = compilePattern(v.Job.ExcludeTables); err != nil {
		return p, newError(ErrConfiguration, "compile table exclusion pattern", "", -1, err)
	}
	if p.excludeData, err = compilePattern(v.Job.ExcludeData); err != nil {
		return p, newError(ErrConfiguration, "compile data exclusion pattern", "", -1, err)
	}

	for _, m := range []map[string]string{v.Job.Where, v.Job.OrderBy} {
		for table := range m {
			if strings.TrimSpace(table) == "" {
				return p, newError(ErrConfiguration, "validate job", "", -1,
					errors.New("per-table override with an empty table name"))
			}
		}
	}
	return p, nil
}

// compilePattern anchors expr so it has to match the whole table name.
// A blank pattern excludes nothing.
func compilePattern(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	return regexp.Compile("^(?:" + expr + ")$")
}

func matches(re *regexp.Regexp, name string) bool {
	return re != nil && re.MatchString(name)
}
