package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// LoadJob reads and parses a YAML job file. ${VAR} references are replaced
// with environment values before parsing, so predicates can carry
// deployment-specific values.
func LoadJob(filePath string) (*models.JobConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file '%s': %w", filePath, err)
	}

	job, err := models.LoadJob([]byte(substituteEnvVars(string(data))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file '%s': %w", filePath, err)
	}
	return job, nil
}

var envRefRe = regexp.MustCompile(`\$\{([^}]*)\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unset variables become empty strings; a bare $NAME is left alone, since
// predicates may contain it.
func substituteEnvVars(content string) string {
	return envRefRe.ReplaceAllStringFunc(content, func(ref string) string {
		return os.Getenv(envRefRe.FindStringSubmatch(ref)[1])
	})
}
