package cmd

import (
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var remoteVersion bool

func NewVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Example: `
# Print the CLI version
encephalon version

# Also query the API server version
encephalon version --remote
		`,
		Run: Version,
	}
	versionCmd.Flags().BoolVarP(&remoteVersion, "remote", "r", false, "Also fetch the API server version")

	return versionCmd
}

func Version(cmd *cobra.Command, args []string) {
	log.Info().Str("version", common.Version).Str("commit", common.Commit).Str("date", common.Date).Msg("Encephalon CLI")

	if remoteVersion {
		apiClient := common.BuildClient()
		info, _, err := apiClient.GetVersion()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed fetching API version")
		}
		log.Info().Str("version", info.Version).Msg("Encephalon API")
	}
}
