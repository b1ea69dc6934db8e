package report

import (
	"fmt"
	"sort"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/logging"
	"github.com/rs/zerolog/log"
)

// Render logs a report in reading order, the same order the web viewer uses.
// Measurements the model flagged and quality warnings are emitted at finding
// level so they stand out in the stream.
func Render(r *client.Report) {
	log.Info().Str("report", r.UUID).Str("version", r.Version).Str("patient", r.Study.Name).Msg("Analysis report")

	if r.Conclusions != "" {
		log.Info().Str("text", r.Conclusions).Msg("Clinical conclusions")
	}

	enumerated := make([]client.EnumeratedConclusion, len(r.EnumeratedConclusions))
	copy(enumerated, r.EnumeratedConclusions)
	sort.Slice(enumerated, func(i, j int) bool {
		return enumerated[i].Order < enumerated[j].Order
	})
	for _, conclusion := range enumerated {
		log.Info().Int("order", conclusion.Order).Str("text", conclusion.Text).Msg("Detailed finding")
	}

	renderMeasurements(logging.FindingTypeDiameter, r.DiameterMeasurements)
	renderMeasurements(logging.FindingTypeSegmentation, r.SegmentationMeasurements)

	for _, pathology := range r.PathologyConclusions {
		event := log.Info().Str("feature", pathology.Pathology.Feature.Value).Str("output", pathology.PathologyOutput)
		if pathology.Score != nil {
			event.Str("score", fmt.Sprintf("%.2f", *pathology.Score))
		}
		event.Msg("Pathology analysis")
	}

	renderWarnings(r.Warnings)
}

// Measurements without a value were not computed for this study and are skipped.
func renderMeasurements(findingType logging.FindingType, measurements []client.MeasurementValue) {
	for _, m := range measurements {
		if m.Value == nil {
			continue
		}

		if m.Flag {
			logging.Finding().
				Str("type", string(findingType)).
				Str("acronym", m.Measurement.Acronym).
				Str("key", m.Measurement.Key).
				Float64("value", *m.Value).
				Str("units", m.Measurement.Units).
				Float64("lowRange", m.Measurement.LowRange).
				Float64("highRange", m.Measurement.HighRange).
				Msg("Outside reference range")
			continue
		}

		log.Info().
			Str("type", string(findingType)).
			Str("acronym", m.Measurement.Acronym).
			Str("key", m.Measurement.Key).
			Float64("value", *m.Value).
			Str("units", m.Measurement.Units).
			Float64("lowRange", m.Measurement.LowRange).
			Float64("highRange", m.Measurement.HighRange).
			Msg("Measurement")
	}
}

func renderWarnings(w client.ReportWarnings) {
	for _, warning := range w.LowQuality {
		logging.Finding().Str("type", string(logging.FindingTypeQuality)).Str("category", "low_quality").Str("message", warning.Message).Msg("Low quality DICOM")
	}
	for _, warning := range w.ViewportNotFound {
		logging.Finding().Str("type", string(logging.FindingTypeQuality)).Str("category", "viewport_not_found").Str("message", warning.Message).Msg("Viewport not found")
	}
	for _, warning := range w.DiameterOutsideRange {
		logging.Finding().Str("type", string(logging.FindingTypeQuality)).Str("category", "diameter_outside_range").Str("message", warning.Message).Msg("Diameter out of range")
	}
	for _, warning := range w.Other {
		logging.Finding().Str("type", string(logging.FindingTypeQuality)).Str("category", "other").Str("message", warning.Message).Msg("Report warning")
	}
}
