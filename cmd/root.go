package cmd

import (
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	configcmd "github.com/iCardioAI/encephalon-examples/cmd/config"
	"github.com/iCardioAI/encephalon-examples/cmd/dicom"
	"github.com/iCardioAI/encephalon-examples/cmd/docs"
	"github.com/iCardioAI/encephalon-examples/cmd/echogpt"
	"github.com/iCardioAI/encephalon-examples/cmd/flow"
	"github.com/iCardioAI/encephalon-examples/cmd/measurement"
	"github.com/iCardioAI/encephalon-examples/cmd/report"
	"github.com/iCardioAI/encephalon-examples/cmd/research"
	"github.com/iCardioAI/encephalon-examples/cmd/scan"
	"github.com/iCardioAI/encephalon-examples/cmd/study"
	"github.com/iCardioAI/encephalon-examples/cmd/webhook"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "encephalon",
		Short: "🫀 Interact with the Encephalon cardiac AI platform 🫀",
		Long:  "Encephalon is a command line client for the iCardio.ai Encephalon API: upload echo studies, run AI scans and retrieve inference reports. 🫀",
	}
)

// Execute runs the root command with terminal state handling wrapped around
// it, so a fatal exit inside a raw mode keyboard listener cannot wedge the
// shell.
func Execute() {
	common.Run(rootCmd)
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "resources", Title: "Resources:"},
		&cobra.Group{ID: "workflows", Title: "Workflows:"},
	)

	rootCmd.AddCommand(study.NewStudyRootCmd())
	rootCmd.AddCommand(dicom.NewDicomRootCmd())
	rootCmd.AddCommand(scan.NewScanRootCmd())
	rootCmd.AddCommand(report.NewReportRootCmd())
	rootCmd.AddCommand(echogpt.NewEchoGPTRootCmd())
	rootCmd.AddCommand(measurement.NewMeasurementRootCmd())
	rootCmd.AddCommand(webhook.NewWebhookRootCmd())
	rootCmd.AddCommand(research.NewResearchRootCmd())
	rootCmd.AddCommand(flow.NewFlowRootCmd())
	rootCmd.AddCommand(configcmd.NewConfigRootCmd())
	rootCmd.AddCommand(docs.NewDocsCmd(rootCmd))
	rootCmd.AddCommand(NewVersionCmd())

	common.AddCommonFlags(rootCmd)
	common.SetupPersistentPreRun(rootCmd)
}
