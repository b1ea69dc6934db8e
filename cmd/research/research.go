package research

import (
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

type ResearchOptions struct {
	UUID   string
	Filter client.ResearchFilter
}

var options = ResearchOptions{}

func NewResearchRootCmd() *cobra.Command {
	researchCmd := &cobra.Command{
		Use:     "research [command]",
		Short:   "Query the research view across all studies",
		GroupID: "resources",
	}

	researchCmd.AddCommand(NewListCmd())
	researchCmd.AddCommand(NewGetCmd())
	researchCmd.AddCommand(NewMetricsCmd())
	researchCmd.AddCommand(NewMetadataCmd())

	return researchCmd
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List studies with their measurement values, filtered for research queries",
		Example: `
# All completed measurement scans of one user
encephalon research list --status COMPLETED --product ECHOMEASURE --user-email researcher@example.com

# Studies created this year with specific views
encephalon research list --created-after 2026-01-01 --view-types PLAX,A4C
		`,
		Run: List,
	}
	listCmd.Flags().StringVarP(&options.Filter.Query, "query", "q", "", "Free text search")
	listCmd.Flags().StringVarP(&options.Filter.Name, "name", "n", "", "Filter by study name")
	listCmd.Flags().StringVar(&options.Filter.UUID, "study", "", "Filter by study UUID")
	listCmd.Flags().StringVar(&options.Filter.CreatedAfter, "created-after", "", "Only studies created at or after this date (RFC3339 or YYYY-MM-DD)")
	listCmd.Flags().StringVar(&options.Filter.CreatedBefore, "created-before", "", "Only studies created at or before this date (RFC3339 or YYYY-MM-DD)")
	listCmd.Flags().StringVarP(&options.Filter.ScanProduct, "product", "p", "", "Filter by scan product")
	listCmd.Flags().StringVar(&options.Filter.ScanStatus, "status", "", "Filter by scan status")
	listCmd.Flags().StringVar(&options.Filter.UserEmail, "user-email", "", "Filter by uploading user")
	listCmd.Flags().StringVar(&options.Filter.ViewTypes, "view-types", "", "Comma separated echo view types, e.g. PLAX,A4C")
	listCmd.Flags().StringVar(&options.Filter.Diseases, "diseases", "", "Comma separated disease labels")
	listCmd.Flags().StringVar(&options.Filter.Measurements, "measurements", "", "Comma separated measurement keys that must be present")

	return listCmd
}

func List(cmd *cobra.Command, args []string) {
	// Parsing up front keeps a typo from silently returning the unfiltered set.
	if options.Filter.CreatedAfter != "" {
		format.ParseISO8601(options.Filter.CreatedAfter)
	}
	if options.Filter.CreatedBefore != "" {
		format.ParseISO8601(options.Filter.CreatedBefore)
	}

	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		studies, next, _, err := apiClient.ListResearchStudies(nextPageUrl, options.Filter)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing research studies")
		}

		for _, study := range studies {
			log.Info().
				Str("uuid", study.UUID).
				Str("name", study.Name).
				Int("age", study.Age).
				Int("measurements", len(study.Measurements)).
				Msg("Research study")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed matching studies")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a single study with all its measurement values",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "s", "", "Study UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	study, _, err := apiClient.GetResearchStudy(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching research study")
	}

	log.Info().Str("uuid", study.UUID).Str("name", study.Name).Int("age", study.Age).Msg("Research study")

	for _, measurement := range study.Measurements {
		event := log.Info().
			Str("acronym", measurement.Measurement.Acronym).
			Str("key", measurement.Measurement.Key).
			Str("units", measurement.Measurement.Units).
			Bool("flag", measurement.Flag)
		if measurement.Value != nil {
			event = event.Float64("value", *measurement.Value)
		}
		event.Msg("Measurement")
	}
}

func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregate metrics over all accessible studies",
		Run:   Metrics,
	}
}

func Metrics(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	metrics, _, err := apiClient.GetStudyMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed fetching study metrics")
	}

	log.Info().Int64("totalStudies", gjson.GetBytes(metrics, "total_studies").Int()).Msg("Study metrics")

	yml, err := format.PrettyPrintYAML(string(metrics))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed pretty printing metrics")
	}
	log.Info().Msg(format.GetPlatformAgnosticNewline() + yml)
}

func NewMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Show the filter values the research view accepts",
		Run:   Metadata,
	}
}

func Metadata(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	metadata, _, err := apiClient.GetFilterMetadata()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed fetching filter metadata")
	}

	yml, err := format.PrettyPrintYAML(string(metadata))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed pretty printing filter metadata")
	}
	log.Info().Msg(format.GetPlatformAgnosticNewline() + yml)
}
