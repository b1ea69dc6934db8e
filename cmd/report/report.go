package report

import (
	"os"
	"strings"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	renderer "github.com/iCardioAI/encephalon-examples/pkg/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ReportOptions struct {
	UUID      string
	StudyUUID string
	ScanUUID  string
	Output    string
	Text      bool
}

var options = ReportOptions{}

func NewReportRootCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:     "report [command]",
		Short:   "Retrieve and render AI inference reports",
		GroupID: "resources",
	}

	reportCmd.AddCommand(NewGetCmd())
	reportCmd.AddCommand(NewListCmd())
	reportCmd.AddCommand(NewHTMLCmd())

	return reportCmd
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a report and render its measurements, conclusions and warnings",
		Long: `Fetch a report and render it to the log. Measurements outside their reference
range and quality warnings are emitted at the finding level so they stand out.`,
		Run: Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "r", "", "Report UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	fullReport, _, err := apiClient.GetReport(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching report")
	}

	renderer.Render(fullReport)
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, optionally filtered by study or scan",
		Run:   List,
	}
	listCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Only list reports of this study")
	listCmd.Flags().StringVarP(&options.ScanUUID, "scan", "i", "", "Only list reports of this scan")

	return listCmd
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		reports, next, _, err := apiClient.ListReports(nextPageUrl, options.StudyUUID, options.ScanUUID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing reports")
		}

		for _, r := range reports {
			log.Info().Str("uuid", r.UUID).Str("version", r.Version).Str("study", r.Study.UUID).Time("createdAt", r.CreatedAt).Msg("Report")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed all reports")
}

func NewHTMLCmd() *cobra.Command {
	htmlCmd := &cobra.Command{
		Use:   "html",
		Short: "Download the server rendered HTML report",
		Example: `
# Save the rendered report
encephalon report html --uuid 79ad9c9c --output report.html

# Print the text content only
encephalon report html --uuid 79ad9c9c --text
		`,
		Run: HTML,
	}
	htmlCmd.Flags().StringVarP(&options.UUID, "uuid", "r", "", "Report UUID")
	err := htmlCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}
	htmlCmd.Flags().StringVarP(&options.Output, "output", "o", "", "Write the HTML sections to this file")
	htmlCmd.Flags().BoolVar(&options.Text, "text", false, "Log the text content instead of saving HTML")

	return htmlCmd
}

func HTML(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	sections, _, err := apiClient.GetReportHTML(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching HTML report")
	}

	if len(sections) == 0 {
		log.Warn().Str("uuid", options.UUID).Msg("Report has no HTML sections")
		return
	}

	if options.Text {
		text, err := renderer.SummarizeHTML(sections)
		if err != nil {
			log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed extracting report text")
		}
		log.Info().Msg(format.GetPlatformAgnosticNewline() + text)
		return
	}

	combined := []string{}
	for _, section := range sections {
		combined = append(combined, section.HTML)
	}
	html := strings.Join(combined, format.GetPlatformAgnosticNewline())

	if title := format.ExtractHTMLTitle([]byte(html)); title != "" {
		log.Debug().Str("title", title).Msg("Report page")
	}

	output := options.Output
	if output == "" {
		output = options.UUID + ".html"
	}

	err = os.WriteFile(output, []byte(html), format.FileUserReadWrite)
	if err != nil {
		log.Fatal().Err(err).Str("output", output).Msg("Failed writing HTML report")
	}

	log.Info().Str("uuid", options.UUID).Str("output", output).Int("sections", len(sections)).Msg("HTML report saved")
}
