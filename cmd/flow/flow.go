package flow

import (
	"context"
	"slices"
	"time"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/cmd/dicom"
	"github.com/iCardioAI/encephalon-examples/cmd/scan"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	renderer "github.com/iCardioAI/encephalon-examples/pkg/report"
	"github.com/iCardioAI/encephalon-examples/pkg/system"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type FlowOptions struct {
	StudyUUID     string
	StudyName     string
	Age           int
	Height        float64
	Weight        float64
	Sex           string
	Product       string
	Threads       int
	MaxUploadSize string
	Timeout       time.Duration
	PollInterval  time.Duration
}

var options = FlowOptions{}

func NewFlowRootCmd() *cobra.Command {
	flowCmd := &cobra.Command{
		Use:     "flow [command]",
		Short:   "End-to-end workflows combining multiple API calls",
		GroupID: "workflows",
	}

	flowCmd.AddCommand(NewAnalyzeCmd())

	return flowCmd
}

func NewAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [paths]",
		Short: "Upload DICOMs, run a scan and render the report in one go",
		Long: `Create a study, upload the given DICOM files, directories or archives into it,
start an AI scan and block until it finishes, then fetch and render the report.
Pass --study to upload into an existing study instead of creating one.
Press the s key to log the current progress, Ctrl+C aborts without touching the scan.`,
		Example: `
# Analyze a folder of echo DICOMs for a 63 year old patient
encephalon flow analyze --age 63 /data/echo-visit/

# Run CardioVision against an existing study
encephalon flow analyze --study d5bbcbdd --product CARDIOVISION scan1.dcm scan2.dcm
		`,
		Run:  Analyze,
		Args: cobra.MinimumNArgs(1),
	}

	analyzeCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Upload into this existing study instead of creating one")
	analyzeCmd.Flags().IntVarP(&options.Age, "age", "a", 0, "Patient age in years, required when creating a study")
	analyzeCmd.Flags().StringVarP(&options.StudyName, "name", "n", "", "Name for the created study, defaults to a random flow-* name")
	analyzeCmd.Flags().Float64Var(&options.Height, "height", 0, "Patient height in inches")
	analyzeCmd.Flags().Float64Var(&options.Weight, "weight", 0, "Patient weight in pounds")
	analyzeCmd.Flags().StringVar(&options.Sex, "sex", "", "Patient sex, MALE or FEMALE")
	analyzeCmd.Flags().StringVarP(&options.Product, "product", "p", client.ProductEchoMeasure, "AI product to run (ECHOMEASURE, CARDIOVISION, ECHOGPT, MITRALVISION)")
	analyzeCmd.Flags().IntVar(&options.Threads, "threads", 4, "Number of parallel uploads")
	analyzeCmd.Flags().StringVar(&options.MaxUploadSize, "max-upload-size", "500MB", "Skip files larger than this, e.g. 200MB or 1GB")
	analyzeCmd.Flags().DurationVar(&options.Timeout, "timeout", client.DefaultWaitTimeout, "Give up waiting for the scan after this long")
	analyzeCmd.Flags().DurationVar(&options.PollInterval, "poll-interval", client.DefaultPollInterval, "Time between scan status polls")

	return analyzeCmd
}

func Analyze(cmd *cobra.Command, args []string) {
	if options.StudyUUID == "" && options.Age == 0 {
		log.Fatal().Msg("Either --study or --age is required")
	}
	if !slices.Contains(scan.KnownProducts, options.Product) {
		log.Warn().Str("product", options.Product).Msg("Unknown product, the server may reject it")
	}

	apiClient := common.BuildClient()

	ctx, cancel := system.SignalContext(context.Background())
	defer cancel()

	studyUUID := options.StudyUUID
	if studyUUID == "" {
		name := options.StudyName
		if name == "" {
			name = "flow-" + format.RandomStringN(8)
		}

		study, _, err := apiClient.CreateStudy(client.StudyRequest{
			Age:    options.Age,
			Name:   name,
			Height: options.Height,
			Weight: options.Weight,
			Sex:    options.Sex,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed creating study")
		}

		log.Info().Str("uuid", study.UUID).Str("name", study.Name).Msg("Study created")
		studyUUID = study.UUID
	}

	uploaded := dicom.UploadPaths(ctx, apiClient, args, dicom.UploadOptions{
		StudyUUID:     studyUUID,
		Threads:       options.Threads,
		MaxUploadSize: options.MaxUploadSize,
	})
	if ctx.Err() != nil {
		log.Fatal().Str("study", studyUUID).Msg("Aborted before scanning")
	}
	if uploaded == 0 {
		log.Fatal().Str("study", studyUUID).Msg("No DICOMs uploaded, nothing to scan")
	}

	createdScan, _, err := apiClient.CreateScan(client.ScanRequest{
		Study:   studyUUID,
		Product: options.Product,
	})
	if err != nil {
		log.Fatal().Err(err).Str("study", studyUUID).Msg("Failed creating scan")
	}
	log.Info().Str("uuid", createdScan.UUID).Str("product", createdScan.Product).Msg("Scan created")

	finished := scan.WaitForScan(ctx, apiClient, createdScan.UUID, options.Timeout, options.PollInterval)

	if finished.Report == "" {
		log.Warn().Str("scan", finished.UUID).Msg("Scan finished without a report")
		return
	}

	fullReport, _, err := apiClient.GetReport(finished.Report)
	if err != nil {
		log.Fatal().Err(err).Str("report", finished.Report).Msg("Failed fetching report")
	}
	renderer.Render(fullReport)

	log.Info().
		Str("study", studyUUID).
		Str("scan", finished.UUID).
		Str("report", finished.Report).
		Msg("Analysis finished 🫀")
}
