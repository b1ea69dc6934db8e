package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	EnvURL        = "ENCEPHALON_URL"
	EnvToken      = "ENCEPHALON_TOKEN"
	EnvConfigFile = "ENCEPHALON_CONFIG"

	defaultConfigFileName = ".encephalon.yml"
	defaultMaxUploadSize  = "500MB"
)

// Config carries everything the API client needs. It is assembled once at the
// command edge and passed to client.NewClient, never read from globals inside
// the SDK.
type Config struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	MaxUploadSize string `yaml:"maxUploadSize"`
}

// Resolve builds a validated Config. Precedence: flags over environment
// variables over the YAML config file (--config, ENCEPHALON_CONFIG or
// ~/.encephalon.yml).
func Resolve(flagURL string, flagToken string, flagConfigFile string) (Config, error) {
	cfg := Config{MaxUploadSize: defaultMaxUploadSize}

	configFile, explicit := configFilePath(flagConfigFile)
	if configFile != "" {
		fileCfg, err := loadFile(configFile)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			cfg.merge(fileCfg)
		}
	}

	if envURL := os.Getenv(EnvURL); envURL != "" {
		cfg.URL = envURL
	}
	if envToken := os.Getenv(EnvToken); envToken != "" {
		cfg.Token = envToken
	}

	if flagURL != "" {
		cfg.URL = flagURL
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}

	if err := ValidateURL(cfg.URL, "api url"); err != nil {
		return cfg, err
	}
	if err := ValidateToken(cfg.Token, "api token"); err != nil {
		return cfg, err
	}
	if _, err := ParseMaxUploadSize(cfg.MaxUploadSize); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// configFilePath reports the config file to read and whether the user named
// it explicitly (flag or env), in which case a missing file is an error.
func configFilePath(flagConfigFile string) (string, bool) {
	if flagConfigFile != "" {
		return flagConfigFile, true
	}
	if envFile := os.Getenv(EnvConfigFile); envFile != "" {
		return envFile, true
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, defaultConfigFileName), false
}

func loadFile(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) merge(other Config) {
	if other.URL != "" {
		c.URL = other.URL
	}
	if other.Token != "" {
		c.Token = other.Token
	}
	if other.MaxUploadSize != "" {
		c.MaxUploadSize = other.MaxUploadSize
	}
}
