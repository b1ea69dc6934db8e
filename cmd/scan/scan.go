package scan

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/logging"
	"github.com/iCardioAI/encephalon-examples/pkg/report"
	"github.com/iCardioAI/encephalon-examples/pkg/system"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ScanOptions struct {
	UUID         string
	StudyUUID    string
	Product      string
	Timeout      time.Duration
	PollInterval time.Duration
	Render       bool
}

var options = ScanOptions{}

// KnownProducts lists the AI products the API accepts today. The server is
// the authority, unknown values only trigger a warning.
var KnownProducts = []string{
	client.ProductEchoMeasure,
	client.ProductCardioVision,
	client.ProductEchoGPT,
	client.ProductMitralVision,
}

func NewScanRootCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:     "scan [command]",
		Short:   "Run AI scans on uploaded studies",
		GroupID: "resources",
	}

	scanCmd.AddCommand(NewCreateCmd())
	scanCmd.AddCommand(NewListCmd())
	scanCmd.AddCommand(NewGetCmd())
	scanCmd.AddCommand(NewWaitCmd())
	scanCmd.AddCommand(NewDeleteCmd())

	return scanCmd
}

func NewCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Start an AI scan over the DICOMs of a study",
		Example: `
# Run the default measurement product
encephalon scan create --study d5bbcbdd

# Run a specific product
encephalon scan create --study d5bbcbdd --product CARDIOVISION
		`,
		Run: Create,
	}
	createCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Study UUID to scan")
	err := createCmd.MarkFlagRequired("study")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking study required")
	}
	createCmd.Flags().StringVarP(&options.Product, "product", "p", client.ProductEchoMeasure, "AI product to run (ECHOMEASURE, CARDIOVISION, ECHOGPT, MITRALVISION)")

	return createCmd
}

func Create(cmd *cobra.Command, args []string) {
	if !slices.Contains(KnownProducts, options.Product) {
		log.Warn().Str("product", options.Product).Msg("Unknown product, the server may reject it")
	}

	apiClient := common.BuildClient()

	scan, _, err := apiClient.CreateScan(client.ScanRequest{
		Study:   options.StudyUUID,
		Product: options.Product,
	})
	if err != nil {
		log.Fatal().Err(err).Str("study", options.StudyUUID).Msg("Failed creating scan")
	}

	log.Info().Str("uuid", scan.UUID).Str("product", scan.Product).Str("status", scan.Status).Msg("Scan created")
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List scans, optionally filtered by study",
		Run:   List,
	}
	listCmd.Flags().StringVarP(&options.StudyUUID, "study", "s", "", "Only list scans of this study")

	return listCmd
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		scans, next, _, err := apiClient.ListScans(nextPageUrl, options.StudyUUID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing scans")
		}

		for _, scan := range scans {
			log.Info().Str("uuid", scan.UUID).Str("product", scan.Product).Str("status", scan.Status).Str("study", scan.Study).Msg("Scan")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed all scans")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current state of a scan",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "i", "", "Scan UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	scan, _, err := apiClient.GetScan(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching scan")
	}

	log.Info().
		Str("uuid", scan.UUID).
		Str("product", scan.Product).
		Str("status", scan.Status).
		Str("state", scan.State).
		Str("report", scan.Report).
		Int("dicomsAvailable", scan.NumberOfAvailableDicoms).
		Int("dicomsScanned", scan.NumberOfDicomsScanned).
		Float64("inferenceTime", scan.TotalInferenceTime).
		Msg("Scan")
}

func NewWaitCmd() *cobra.Command {
	waitCmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until a scan reaches a terminal status",
		Long: `Block until a scan completes or fails, polling its status at a fixed interval.
Press the s key to log the current progress, Ctrl+C aborts the wait without touching the scan.`,
		Example: `
# Wait with the default 10m budget, polling every 10s
encephalon scan wait --uuid 4dd1f176

# Fail fast on slow pipelines and render the report on completion
encephalon scan wait --uuid 4dd1f176 --timeout 2m --poll-interval 5s --render
		`,
		Run: Wait,
	}
	waitCmd.Flags().StringVarP(&options.UUID, "uuid", "i", "", "Scan UUID")
	err := waitCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}
	waitCmd.Flags().DurationVar(&options.Timeout, "timeout", client.DefaultWaitTimeout, "Max time to wait for a terminal status")
	waitCmd.Flags().DurationVar(&options.PollInterval, "poll-interval", client.DefaultPollInterval, "Pause between status polls")
	waitCmd.Flags().BoolVar(&options.Render, "render", false, "Render the report once the scan completes")

	return waitCmd
}

func Wait(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	ctx, cancel := system.SignalContext(context.Background())
	defer cancel()

	scan := WaitForScan(ctx, apiClient, options.UUID, options.Timeout, options.PollInterval)

	if options.Render && scan.Report != "" {
		fullReport, _, err := apiClient.GetReport(scan.Report)
		if err != nil {
			log.Fatal().Err(err).Str("report", scan.Report).Msg("Failed fetching report")
		}
		report.Render(fullReport)
	}
}

// WaitForScan blocks until the scan completes and returns its final payload,
// exiting the process on failure or timeout. The flow command reuses it after
// starting its own scan.
func WaitForScan(ctx context.Context, apiClient client.EncephalonApiClient, scanId string, timeout time.Duration, pollInterval time.Duration) *client.Scan {
	progress := newWaitProgress(scanId)
	logging.RegisterStatusHook(progress.status)

	scan, err := apiClient.WaitForScanCompletion(ctx, scanId, client.WaitOptions{
		Timeout:      timeout,
		PollInterval: pollInterval,
		OnPoll:       progress.record,
	})
	if err != nil {
		exitWaitError(err)
	}

	log.Info().
		Str("uuid", scan.UUID).
		Str("report", scan.Report).
		Int("dicomsScanned", scan.NumberOfDicomsScanned).
		Float64("inferenceTime", scan.TotalInferenceTime).
		Msg("Scan completed")

	return scan
}

// waitProgress tracks poll results for the s shortcut and logs status
// transitions as they happen.
type waitProgress struct {
	mu         sync.Mutex
	scanId     string
	started    time.Time
	polls      int
	lastStatus string
}

func newWaitProgress(scanId string) *waitProgress {
	return &waitProgress{scanId: scanId, started: time.Now()}
}

func (p *waitProgress) record(scan *client.Scan) {
	p.mu.Lock()
	changed := scan.Status != p.lastStatus
	p.polls = p.polls + 1
	p.lastStatus = scan.Status
	p.mu.Unlock()

	if changed {
		log.Info().Str("scan", scan.UUID).Str("status", scan.Status).Msg("Scan status")
	}
}

func (p *waitProgress) status() *zerolog.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return log.Info().
		Str("scan", p.scanId).
		Str("status", p.lastStatus).
		Int("polls", p.polls).
		Dur("elapsed", time.Since(p.started))
}

func exitWaitError(err error) {
	var failed *client.ScanFailedError
	if errors.As(err, &failed) {
		log.Fatal().Str("scan", failed.Scan.UUID).Str("state", failed.Scan.State).Msg("Scan failed")
	}

	var timedOut *client.TimeoutError
	if errors.As(err, &timedOut) {
		log.Fatal().
			Str("scan", timedOut.ScanUUID).
			Str("lastStatus", timedOut.LastStatus).
			Int("polls", timedOut.Polls).
			Dur("timeout", timedOut.Timeout).
			Msg("Scan did not finish in time")
	}

	log.Fatal().Err(err).Msg("Waiting for scan failed")
}

func NewDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a scan",
		Run:   Delete,
	}
	deleteCmd.Flags().StringVarP(&options.UUID, "uuid", "i", "", "Scan UUID")
	err := deleteCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return deleteCmd
}

func Delete(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	_, err := apiClient.DeleteScan(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed deleting scan")
	}

	log.Info().Str("uuid", options.UUID).Msg("Scan deleted")
}
