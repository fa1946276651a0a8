package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvFile(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if got := EnvFile(); got != ".env.production" {
		t.Errorf("EnvFile() = %q, want %q", got, ".env.production")
	}

	t.Setenv("APP_ENV", "")
	if got := EnvFile(); got != ".env.local" {
		t.Errorf("EnvFile() = %q, want %q", got, ".env.local")
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	if err := os.WriteFile(path, []byte("LB_TEST_LOADED=yes\nLB_TEST_PRESET=file\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("LB_TEST_PRESET", "process")
	// registered so t restores the variable after the test
	t.Setenv("LB_TEST_LOADED", "")
	os.Unsetenv("LB_TEST_LOADED")

	loaded, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if loaded != path {
		t.Errorf("LoadEnv() = %q, want %q", loaded, path)
	}
	if got := os.Getenv("LB_TEST_LOADED"); got != "yes" {
		t.Errorf("LB_TEST_LOADED = %q, want %q", got, "yes")
	}
	if got := os.Getenv("LB_TEST_PRESET"); got != "process" {
		t.Errorf("LB_TEST_PRESET = %q, want existing value to win", got)
	}
}

func TestLoadEnv_MissingFileIsNotAnError(t *testing.T) {
	loaded, err := LoadEnv(filepath.Join(t.TempDir(), ".env.absent"))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if loaded != "" {
		t.Errorf("LoadEnv() = %q, want empty for missing file", loaded)
	}
}
