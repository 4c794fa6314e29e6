package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDotEnvPath is read when no .env path is given.
const DefaultDotEnvPath = ".env"

// LoadDotEnv loads variables from a .env file without overriding ones
// already set in the environment. With an empty path it reads ".env" from the
// working directory and tolerates its absence; an explicit path must exist.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultDotEnvPath); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultDotEnvPath
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from a .env file (optional) and environment variables.
// Variables already present in the environment win over the .env file.
// The result is not validated; callers run Validate after applying flag overrides.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	return envCfg.ToAppConfig(), nil
}
