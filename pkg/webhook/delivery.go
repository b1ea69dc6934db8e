package webhook

import (
	"slices"
	"sync"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/logging"
	"github.com/iCardioAI/encephalon-examples/pkg/report"
	"github.com/perimeterx/marshmallow"
	"github.com/rs/zerolog/log"
	"github.com/rxwycdh/rxhash"
	"github.com/tidwall/gjson"
	"resty.dev/v3"
)

// DeliveryReport is the result preview a notification embeds.
// The full report is fetched from the API.
type DeliveryReport struct {
	UUID        string   `json:"uuid"`
	Conclusions []string `json:"conclusions"`
	BestDicoms  []string `json:"best_dicoms"`
}

// Delivery is a scan status notification POSTed to the listener.
type Delivery struct {
	ScanID string         `json:"scan_id"`
	Status string         `json:"status"`
	Report DeliveryReport `json:"report"`
	Extra  map[string]any `json:"-"`
}

// ParseDelivery decodes a notification body. Fields beyond the known set are
// kept in Extra, the payload schema grows with the products.
func ParseDelivery(data []byte) (*Delivery, error) {
	delivery := &Delivery{}
	extra, err := marshmallow.Unmarshal(data, delivery, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return nil, err
	}
	delivery.Extra = extra
	return delivery, nil
}

// ScanResultApi is the API surface the processor needs to resolve a
// notification into full results.
type ScanResultApi interface {
	GetReport(reportId string) (*client.Report, *resty.Response, error)
	GetScan(scanId string) (*client.Scan, *resty.Response, error)
}

// Processor turns queued notifications into rendered results.
type Processor struct {
	Api ScanResultApi

	seenMutex sync.Mutex
	seen      []string
}

func NewProcessor(api ScanResultApi) *Processor {
	return &Processor{Api: api}
}

type deliveryKey struct {
	ScanID string
	Status string
	Report string
}

// alreadySeen records a delivery and reports whether it was processed before.
// The API redelivers until acknowledged, retries must not render twice.
func (p *Processor) alreadySeen(delivery *Delivery) bool {
	hash, _ := rxhash.HashStruct(deliveryKey{ScanID: delivery.ScanID, Status: delivery.Status, Report: delivery.Report.UUID})
	p.seenMutex.Lock()
	defer p.seenMutex.Unlock()
	if slices.Contains(p.seen, hash) {
		return true
	}
	p.seen = append(p.seen, hash)
	return false
}

// Process handles one raw notification body from the queue.
func (p *Processor) Process(data []byte) {
	delivery, err := ParseDelivery(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed unmarshalling webhook delivery")
		return
	}

	if delivery.ScanID == "" {
		log.Error().Msg("Webhook delivery without scan_id, dropping")
		return
	}

	if p.alreadySeen(delivery) {
		log.Debug().Str("scan", delivery.ScanID).Str("status", delivery.Status).Msg("Duplicate webhook delivery, skipping")
		return
	}

	log.Info().
		Str("scan", delivery.ScanID).
		Str("status", delivery.Status).
		Int64("measurements", gjson.GetBytes(data, "report.measurements.#").Int()).
		Int64("pathologies", gjson.GetBytes(data, "report.pathologies.#").Int()).
		Int64("conclusions", gjson.GetBytes(data, "report.conclusions.#").Int()).
		Msg("Webhook delivery received")

	switch delivery.Status {
	case client.ScanStatusCompleted:
		p.handleCompleted(delivery, data)
	case client.ScanStatusFailed:
		p.handleFailed(delivery)
	default:
		log.Info().Str("scan", delivery.ScanID).Str("status", delivery.Status).Msg("Notification for non-terminal status")
	}
}

func (p *Processor) handleCompleted(delivery *Delivery, data []byte) {
	// Deliveries carry pathology previews with the model confidence,
	// the report API does not expose the confidence.
	gjson.GetBytes(data, "report.pathologies").ForEach(func(_, pathology gjson.Result) bool {
		logging.Finding().
			Str("type", string(logging.FindingTypePathology)).
			Str("scan", delivery.ScanID).
			Str("name", pathology.Get("name").String()).
			Str("severity", pathology.Get("severity").String()).
			Float64("confidence", pathology.Get("confidence").Float()).
			Msg("Pathology detected")
		return true
	})

	if delivery.Report.UUID == "" {
		log.Warn().Str("scan", delivery.ScanID).Msg("Completed notification without report uuid")
		return
	}

	fullReport, _, err := p.Api.GetReport(delivery.Report.UUID)
	if err != nil {
		log.Error().Err(err).Str("report", delivery.Report.UUID).Msg("Failed fetching report for completed scan")
		return
	}

	report.Render(fullReport)
}

// The notification for a failed scan has no details, the scan resource
// carries the pipeline state.
func (p *Processor) handleFailed(delivery *Delivery) {
	scan, _, err := p.Api.GetScan(delivery.ScanID)
	if err != nil {
		log.Error().Err(err).Str("scan", delivery.ScanID).Msg("Failed fetching failed scan details")
		return
	}

	log.Error().Str("scan", scan.UUID).Str("state", scan.State).Msg("Scan failed")
}
