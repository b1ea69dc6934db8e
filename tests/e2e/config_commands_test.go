package e2e

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestConfigInit_WritesTemplate verifies config init creates a template file
// with user-only permissions
func TestConfigInit_WritesTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "encephalon.yml")

	stdout, _, exitErr := runCLI(t, []string{"config", "init", "--config", configPath}, nil, 10*time.Second)

	assert.Nil(t, exitErr, "config init should succeed")
	assertLogContains(t, stdout, []string{"Config template written, add your API token"})

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	assertLogContains(t, string(content), []string{"url: https://us2.encephalon.ai", "maxUploadSize: 500MB"})

	stat, err := os.Stat(configPath)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), stat.Mode().Perm(),
		"Config file holds the API token and should not be world readable")
}

// TestConfigInit_RefusesOverwrite verifies an existing file is never touched
func TestConfigInit_RefusesOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "encephalon.yml")
	original := "url: https://keep.example\ntoken: keepme\n"
	if err := os.WriteFile(configPath, []byte(original), 0600); err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}

	stdout, _, exitErr := runCLI(t, []string{"config", "init", "--config", configPath}, nil, 10*time.Second)

	if exitErr == nil {
		t.Errorf("Expected a non-zero exit when the config file exists\nstdout:\n%s", stdout)
	}
	assertLogContains(t, stdout, []string{"Config file already exists, refusing to overwrite"})

	content, err := os.ReadFile(configPath)
	assert.NoError(t, err)
	assert.Equal(t, original, string(content), "Existing config file must stay untouched")
}

// TestConfigShow_ReadsConfigFileAndRedactsToken verifies the file is loaded
// and long tokens show only their edges
func TestConfigShow_ReadsConfigFileAndRedactsToken(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "encephalon.yml")
	fileContent := "url: https://us2.encephalon.ai\ntoken: f7356683d3bca2c3a671\nmaxUploadSize: 250MB\n"
	if err := os.WriteFile(configPath, []byte(fileContent), 0600); err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}

	stdout, _, exitErr := runCLI(t, []string{"config", "show", "--config", configPath}, nil, 10*time.Second)

	assert.Nil(t, exitErr, "config show should succeed")
	assertLogContains(t, stdout, []string{"url: https://us2.encephalon.ai", "f735...a671", "maxUploadSize: 250MB"})
	assertLogNotContains(t, stdout, []string{"f7356683d3bca2c3a671"})
}

// TestConfigShow_ReadsEnvironment verifies the ENCEPHALON_* variables resolve
// without a config file, short tokens are fully masked
func TestConfigShow_ReadsEnvironment(t *testing.T) {
	env := []string{
		"ENCEPHALON_URL=https://env.encephalon.test",
		"ENCEPHALON_TOKEN=tiny",
	}

	stdout, _, exitErr := runCLI(t, []string{"config", "show"}, env, 10*time.Second)

	assert.Nil(t, exitErr, "config show should succeed")
	assertLogContains(t, stdout, []string{"url: https://env.encephalon.test", "********"})
	assertLogNotContains(t, stdout, []string{"tiny"})
}

// TestConfigShow_FlagsOverrideEnvironment verifies flag precedence end to end
func TestConfigShow_FlagsOverrideEnvironment(t *testing.T) {
	env := []string{
		"ENCEPHALON_URL=https://env.encephalon.test",
		"ENCEPHALON_TOKEN=f7356683d3bca2c3a671",
	}
	args := []string{"config", "show", "--url", "https://flagged.encephalon.test", "--token", "flagtoken99"}

	stdout, _, exitErr := runCLI(t, args, env, 10*time.Second)

	assert.Nil(t, exitErr, "config show should succeed")
	assertLogContains(t, stdout, []string{"url: https://flagged.encephalon.test", "flag...en99"})
	assertLogNotContains(t, stdout, []string{"https://env.encephalon.test", "f735...a671"})
}
