// Package config loads the settings of a migration run: connection and
// logging settings from the environment, and the job definition from a
// YAML file.
package config

// Config holds the settings read from environment variables (which may be
// populated from a .env file in main).
type Config struct {
	SQLConnString string `env:"SQL_CONNECTION_STRING,required"`
	SQLDriver     string `env:"SQL_DRIVER"    envDefault:"mysql"`
	SQLiteOutput  string `env:"SQLITE_OUTPUT" envDefault:"output.sqlite"`
	LogLevel      string `env:"LOG_LEVEL"     envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogFormat     string `env:"LOG_FORMAT"    envDefault:"console"`
}

// LoadConfig loads application settings from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
