package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile returns the dotenv file for the current environment:
// ".env.production" when APP_ENV is "production", else ".env.local".
func EnvFile() string {
	if os.Getenv("APP_ENV") == "production" {
		return ".env.production"
	}
	return ".env.local"
}

// LoadEnv loads variables from a dotenv file into the process environment.
// Variables already set are not overridden. An empty path selects [EnvFile];
// a missing file is not an error.
//
// It returns the path that was loaded, or "" if none was.
func LoadEnv(path string) (string, error) {
	if path == "" {
		path = EnvFile()
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return path, nil
}
