package echogpt

import (
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var reportUUID string

func NewEchoGPTRootCmd() *cobra.Command {
	echogptCmd := &cobra.Command{
		Use:     "echogpt [command]",
		Short:   "Retrieve EchoGPT natural language reports",
		GroupID: "resources",
	}

	echogptCmd.AddCommand(NewListCmd())
	echogptCmd.AddCommand(NewGetCmd())

	return echogptCmd
}

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all EchoGPT reports",
		Run:   List,
	}
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	reports, _, err := apiClient.ListEchoGPTReports()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed listing EchoGPT reports")
	}

	for _, r := range reports {
		log.Info().Str("uuid", r.UUID).Str("scan", r.Scan).Time("createdAt", r.CreatedAt).Msg("EchoGPT report")
	}

	log.Info().Int("count", len(reports)).Msg("Listed all EchoGPT reports")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the generated text of an EchoGPT report",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&reportUUID, "uuid", "r", "", "EchoGPT report UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	report, _, err := apiClient.GetEchoGPTReport(reportUUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", reportUUID).Msg("Failed fetching EchoGPT report")
	}

	log.Info().Str("uuid", report.UUID).Str("scan", report.Scan).Msg("EchoGPT report")
	log.Info().Msg(format.GetPlatformAgnosticNewline() + format.SanitizeTerminalText(report.Response))
}
