package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv keeps the process environment from leaking into precedence tests.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvConfigFile, "")
	t.Setenv("HOME", t.TempDir())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encephalon.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestResolveFlagsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve("https://api.us2.encephalon.ai", "tok-123", "")
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if cfg.URL != "https://api.us2.encephalon.ai" {
		t.Errorf("URL = %q, want flag value", cfg.URL)
	}
	if cfg.Token != "tok-123" {
		t.Errorf("Token = %q, want flag value", cfg.Token)
	}
	if cfg.MaxUploadSize != "500MB" {
		t.Errorf("MaxUploadSize = %q, want default 500MB", cfg.MaxUploadSize)
	}
}

func TestResolveFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "url: https://file.encephalon.ai\ntoken: file-token\nmaxUploadSize: 2GB\n")

	cfg, err := Resolve("", "", path)
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if cfg.URL != "https://file.encephalon.ai" {
		t.Errorf("URL = %q, want file value", cfg.URL)
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q, want file value", cfg.Token)
	}
	if cfg.MaxUploadSize != "2GB" {
		t.Errorf("MaxUploadSize = %q, want file value", cfg.MaxUploadSize)
	}
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		fileBody  string
		envURL    string
		envToken  string
		flagURL   string
		flagToken string
		wantURL   string
		wantToken string
	}{
		{
			name:      "env overrides file",
			fileBody:  "url: https://file.encephalon.ai\ntoken: file-token\n",
			envURL:    "https://env.encephalon.ai",
			envToken:  "env-token",
			wantURL:   "https://env.encephalon.ai",
			wantToken: "env-token",
		},
		{
			name:      "flag overrides env",
			fileBody:  "url: https://file.encephalon.ai\ntoken: file-token\n",
			envURL:    "https://env.encephalon.ai",
			envToken:  "env-token",
			flagURL:   "https://flag.encephalon.ai",
			flagToken: "flag-token",
			wantURL:   "https://flag.encephalon.ai",
			wantToken: "flag-token",
		},
		{
			name:      "partial env keeps file values",
			fileBody:  "url: https://file.encephalon.ai\ntoken: file-token\n",
			envToken:  "env-token",
			wantURL:   "https://file.encephalon.ai",
			wantToken: "env-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfigFile(t, tt.fileBody)
			if tt.envURL != "" {
				t.Setenv(EnvURL, tt.envURL)
			}
			if tt.envToken != "" {
				t.Setenv(EnvToken, tt.envToken)
			}

			cfg, err := Resolve(tt.flagURL, tt.flagToken, path)
			if err != nil {
				t.Fatalf("Resolve() unexpected error = %v", err)
			}
			if cfg.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", cfg.URL, tt.wantURL)
			}
			if cfg.Token != tt.wantToken {
				t.Errorf("Token = %q, want %q", cfg.Token, tt.wantToken)
			}
		})
	}
}

func TestResolveConfigFileEnvVar(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "url: https://env-file.encephalon.ai\ntoken: env-file-token\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Resolve("", "", "")
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if cfg.URL != "https://env-file.encephalon.ai" {
		t.Errorf("URL = %q, want value from %s file", cfg.URL, EnvConfigFile)
	}
}

func TestResolveExplicitMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Resolve("https://api.us2.encephalon.ai", "tok", filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("Resolve() expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file") {
		t.Errorf("Resolve() error = %v, want error mentioning config file", err)
	}
}

func TestResolveMissingDefaultFileTolerated(t *testing.T) {
	clearEnv(t)

	// no ~/.encephalon.yml in the fresh HOME, flags carry everything
	cfg, err := Resolve("https://api.us2.encephalon.ai", "tok", "")
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if cfg.URL != "https://api.us2.encephalon.ai" {
		t.Errorf("URL = %q, want flag value", cfg.URL)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name      string
		flagURL   string
		flagToken string
		errMsg    string
	}{
		{
			name:      "missing url",
			flagToken: "tok",
			errMsg:    "api url",
		},
		{
			name:    "missing token",
			flagURL: "https://api.us2.encephalon.ai",
			errMsg:  "api token",
		},
		{
			name:      "url without scheme",
			flagURL:   "api.us2.encephalon.ai",
			flagToken: "tok",
			errMsg:    "scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Resolve(tt.flagURL, tt.flagToken, "")
			if err == nil {
				t.Fatal("Resolve() expected validation error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Resolve() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestResolveBadMaxUploadSize(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "url: https://api.us2.encephalon.ai\ntoken: tok\nmaxUploadSize: enormous\n")

	_, err := Resolve("", "", path)
	if err == nil {
		t.Fatal("Resolve() expected error for unparsable maxUploadSize")
	}
	if !strings.Contains(err.Error(), "max upload size") {
		t.Errorf("Resolve() error = %v, want error mentioning max upload size", err)
	}
}

func TestResolveMalformedYaml(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "url: [broken\n")

	_, err := Resolve("", "", path)
	if err == nil {
		t.Fatal("Resolve() expected error for malformed yaml")
	}
}
