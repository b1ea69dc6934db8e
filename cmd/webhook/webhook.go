package webhook

import (
	"context"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	hooks "github.com/iCardioAI/encephalon-examples/pkg/webhook"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/logging"
	"github.com/iCardioAI/encephalon-examples/pkg/system"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type WebhookOptions struct {
	UUID         string
	URL          string
	Address      string
	QueueFolder  string
	MaxWorkers   int
	MaxBodyBytes int64
	RegisterURL  string
}

var options = WebhookOptions{}

func NewWebhookRootCmd() *cobra.Command {
	webhookCmd := &cobra.Command{
		Use:     "webhook [command]",
		Short:   "Manage scan notification webhooks and receive deliveries",
		GroupID: "resources",
	}

	webhookCmd.AddCommand(NewSetupCmd())
	webhookCmd.AddCommand(NewListCmd())
	webhookCmd.AddCommand(NewGetCmd())
	webhookCmd.AddCommand(NewUpdateCmd())
	webhookCmd.AddCommand(NewDeleteCmd())
	webhookCmd.AddCommand(NewListenCmd())

	return webhookCmd
}

func NewSetupCmd() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Register a webhook endpoint, reusing an existing registration for the same URL",
		Example: `
# Register a publicly reachable endpoint
encephalon webhook setup --url https://hooks.example.com/encephalon
		`,
		Run: Setup,
	}
	setupCmd.Flags().StringVarP(&options.URL, "url", "w", "", "Publicly reachable URL the API should POST notifications to")
	err := setupCmd.MarkFlagRequired("url")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking url required")
	}

	return setupCmd
}

func Setup(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()
	webhook := ensureWebhook(apiClient, options.URL)
	log.Info().Str("uuid", webhook.UUID).Str("url", webhook.URL).Str("token", webhook.Token).Bool("active", webhook.IsActive).Msg("Webhook ready")
}

// ensureWebhook registers url unless a webhook for it already exists. The API
// allows duplicate registrations, which would double every notification.
func ensureWebhook(apiClient client.EncephalonApiClient, url string) *client.Webhook {
	nextPageUrl := ""
	for {
		webhooks, next, _, err := apiClient.ListWebhooks(nextPageUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing webhooks")
		}

		for _, webhook := range webhooks {
			if webhook.URL == url {
				log.Info().Str("uuid", webhook.UUID).Msg("Webhook already registered")
				return &webhook
			}
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	webhook, _, err := apiClient.CreateWebhook(url)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Failed creating webhook")
	}

	log.Info().Str("uuid", webhook.UUID).Msg("Webhook registered")
	return webhook
}

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered webhooks",
		Run:   List,
	}
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		webhooks, next, _, err := apiClient.ListWebhooks(nextPageUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing webhooks")
		}

		for _, webhook := range webhooks {
			log.Info().Str("uuid", webhook.UUID).Str("url", webhook.URL).Bool("active", webhook.IsActive).Time("createdAt", webhook.CreatedAt).Msg("Webhook")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed all webhooks")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a single webhook registration",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "w", "", "Webhook UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	webhook, _, err := apiClient.GetWebhook(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching webhook")
	}

	log.Info().
		Str("uuid", webhook.UUID).
		Str("url", webhook.URL).
		Str("token", webhook.Token).
		Bool("active", webhook.IsActive).
		Time("createdAt", webhook.CreatedAt).
		Msg("Webhook")
}

func NewUpdateCmd() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Point an existing webhook at a new URL",
		Run:   Update,
	}
	updateCmd.Flags().StringVarP(&options.UUID, "uuid", "w", "", "Webhook UUID")
	err := updateCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}
	updateCmd.Flags().StringVar(&options.URL, "url", "", "New URL the API should POST notifications to")
	err = updateCmd.MarkFlagRequired("url")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking url required")
	}

	return updateCmd
}

func Update(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	webhook, _, err := apiClient.UpdateWebhook(options.UUID, options.URL)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed updating webhook")
	}

	log.Info().Str("uuid", webhook.UUID).Str("url", webhook.URL).Msg("Webhook updated")
}

func NewDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a webhook registration",
		Run:   Delete,
	}
	deleteCmd.Flags().StringVarP(&options.UUID, "uuid", "w", "", "Webhook UUID")
	err := deleteCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return deleteCmd
}

func Delete(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	_, err := apiClient.DeleteWebhook(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed deleting webhook")
	}

	log.Info().Str("uuid", options.UUID).Msg("Webhook deleted")
}

func NewListenCmd() *cobra.Command {
	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive scan notifications and render results as they arrive",
		Long: `Receive scan notifications on a local HTTP endpoint. Deliveries are queued on
disk and acknowledged immediately, completed scans are resolved to their full
report and rendered. Press the s key to log the current queue depth.`,
		Example: `
# Listen on the default address
encephalon webhook listen

# Register the public URL first, then listen behind the reverse proxy
encephalon webhook listen --register https://hooks.example.com/encephalon --address 127.0.0.1:8844
		`,
		Run: Listen,
	}
	listenCmd.Flags().StringVarP(&options.Address, "address", "a", "127.0.0.1:8080", "Address to listen on")
	listenCmd.Flags().StringVar(&options.QueueFolder, "queue", "", "Folder for the delivery queue (default: system temp)")
	listenCmd.Flags().IntVar(&options.MaxWorkers, "workers", 4, "Nr of parallel delivery processors")
	listenCmd.Flags().Int64Var(&options.MaxBodyBytes, "max-body", 0, "Max accepted notification body size in bytes (default 10MB)")
	listenCmd.Flags().StringVar(&options.RegisterURL, "register", "", "Register this public URL before listening")

	return listenCmd
}

func Listen(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	if options.RegisterURL != "" {
		ensureWebhook(apiClient, options.RegisterURL)
	}

	listener := hooks.NewListener(&hooks.ListenerOptions{
		Address:      options.Address,
		QueueFolder:  options.QueueFolder,
		MaxWorkers:   options.MaxWorkers,
		MaxBodyBytes: options.MaxBodyBytes,
	}, hooks.NewProcessor(apiClient))

	logging.RegisterStatusHook(func() *zerolog.Event {
		return log.Info().Str("address", options.Address).Int64("queueDepth", listener.QueueDepth())
	})

	ctx, cancel := system.SignalContext(context.Background())
	defer cancel()

	log.Info().Str("address", options.Address).Msg("Webhook listener starting")
	err := listener.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Webhook listener failed")
	}

	log.Info().Msg("Webhook listener stopped")
}
