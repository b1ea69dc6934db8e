package config

import (
	"os"
	"path/filepath"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	cfg "github.com/iCardioAI/encephalon-examples/pkg/config"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigRootCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config [command]",
		Short: "Inspect and bootstrap the CLI configuration",
	}

	configCmd.AddCommand(NewShowCmd())
	configCmd.AddCommand(NewInitCmd())

	return configCmd
}

func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with the token redacted",
		Long:  "Show the configuration as resolved from flags, environment variables and the config file, in that precedence.",
		Run:   Show,
	}
}

func Show(cmd *cobra.Command, args []string) {
	resolved, err := cfg.Resolve(common.ApiURL, common.ApiToken, common.ConfigFile)
	if err != nil {
		// Show what resolved anyway, an incomplete config is what the user
		// is usually here to debug.
		log.Warn().Err(err).Msg("Configuration incomplete")
	}

	resolved.Token = redactToken(resolved.Token)

	data, err := yaml.Marshal(resolved)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marshalling configuration")
	}

	log.Info().Msg(format.GetPlatformAgnosticNewline() + string(data))
}

func redactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file template",
		Long:  "Write a config file template to ~/.encephalon.yml or the path given with --config. Never overwrites an existing file.",
		Run:   Init,
	}
}

func Init(cmd *cobra.Command, args []string) {
	target := common.ConfigFile
	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed locating home directory")
		}
		target = filepath.Join(home, ".encephalon.yml")
	}

	if _, err := os.Stat(target); err == nil {
		log.Fatal().Str("path", target).Msg("Config file already exists, refusing to overwrite")
	}

	template := cfg.Config{
		URL:           "https://us2.encephalon.ai",
		Token:         "",
		MaxUploadSize: "500MB",
	}

	data, err := yaml.Marshal(template)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marshalling config template")
	}

	err = os.WriteFile(target, data, format.FileUserReadWrite)
	if err != nil {
		log.Fatal().Err(err).Str("path", target).Msg("Failed writing config file")
	}

	log.Info().Str("path", target).Msg("Config template written, add your API token")
}
