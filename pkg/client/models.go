package client

import (
	"time"
)

type PaginatedResponse[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

type Study struct {
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	Sex       string    `json:"sex"`
}

// Height is inches, weight is pounds. Age is the only required field.
type StudyRequest struct {
	Age    int     `json:"age"`
	Name   string  `json:"name,omitempty"`
	Height float64 `json:"height,omitempty"`
	Weight float64 `json:"weight,omitempty"`
	Sex    string  `json:"sex,omitempty"`
}

// StudyUpdate carries only the fields to change, zero values stay out of the
// PATCH body.
type StudyUpdate struct {
	Age    int     `json:"age,omitempty"`
	Name   string  `json:"name,omitempty"`
	Height float64 `json:"height,omitempty"`
	Weight float64 `json:"weight,omitempty"`
	Sex    string  `json:"sex,omitempty"`
}

type Dicom struct {
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Study     string    `json:"study"`
	FileSize  int64     `json:"file_size"`
}

const (
	ProductEchoMeasure  = "ECHOMEASURE"
	ProductCardioVision = "CARDIOVISION"
	ProductEchoGPT      = "ECHOGPT"
	ProductMitralVision = "MITRALVISION"
)

const (
	ScanStatusPending   = "PENDING"
	ScanStatusStarted   = "STARTED"
	ScanStatusCompleted = "COMPLETED"
	ScanStatusFailed    = "FAILED"
)

// Scan status values are an open set, new pipeline stages appear without
// notice. Only COMPLETED and FAILED are terminal.
type Scan struct {
	UUID                    string  `json:"uuid"`
	CreatedAt               string  `json:"created_at"`
	Study                   string  `json:"study"`
	Product                 string  `json:"product"`
	Status                  string  `json:"status"`
	Report                  string  `json:"report"`
	NumberOfAvailableDicoms int     `json:"number_of_available_dicoms"`
	NumberOfDicomsScanned   int     `json:"number_of_dicoms_scanned"`
	TotalInferenceTime      float64 `json:"total_inference_time"`
	State                   string  `json:"state"`

	// Extra holds response fields the struct does not model.
	Extra map[string]any `json:"-"`
}

func (s *Scan) IsTerminal() bool {
	return s.Status == ScanStatusCompleted || s.Status == ScanStatusFailed
}

type ScanRequest struct {
	Study   string `json:"study"`
	Product string `json:"product,omitempty"`
}

type Measurement struct {
	Acronym   string  `json:"acronym"`
	Key       string  `json:"key"`
	Units     string  `json:"units"`
	LowRange  float64 `json:"low_range"`
	HighRange float64 `json:"high_range"`
}

type MeasurementValue struct {
	Measurement Measurement `json:"measurement"`
	Value       *float64    `json:"value"`
	Flag        bool        `json:"flag"`
}

type EnumeratedConclusion struct {
	Order int    `json:"order"`
	Text  string `json:"text"`
}

type PathologyFeature struct {
	Value string `json:"value"`
}

type Pathology struct {
	Feature PathologyFeature `json:"feature"`
}

type PathologyConclusion struct {
	Pathology       Pathology `json:"pathology"`
	PathologyOutput string    `json:"pathology_output"`
	Score           *float64  `json:"score"`
}

type ReportWarning struct {
	Message string `json:"message"`
}

type ReportWarnings struct {
	LowQuality           []ReportWarning `json:"low_quality"`
	ViewportNotFound     []ReportWarning `json:"viewport_not_found"`
	DiameterOutsideRange []ReportWarning `json:"diameter_outside_range"`
	Other                []ReportWarning `json:"other"`
}

type Report struct {
	UUID                     string                 `json:"uuid"`
	CreatedAt                time.Time              `json:"created_at"`
	Version                  string                 `json:"version"`
	State                    string                 `json:"state"`
	Study                    Study                  `json:"study"`
	Conclusions              string                 `json:"conclusions"`
	EnumeratedConclusions    []EnumeratedConclusion `json:"enumerated_conclusions"`
	DiameterMeasurements     []MeasurementValue     `json:"diameter_measurements"`
	SegmentationMeasurements []MeasurementValue     `json:"segmentation_measurements"`
	PathologyConclusions     []PathologyConclusion  `json:"pathology_conclusions"`
	Warnings                 ReportWarnings         `json:"warnings"`
}

// ReportHTMLSection is one block of the server rendered report.
type ReportHTMLSection struct {
	HTML string `json:"html"`
}

type EchoGPTReport struct {
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	Scan      string    `json:"scan"`
	Response  string    `json:"response"`
}

type Webhook struct {
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	IsActive  bool      `json:"is_active"`
}

type WebhookRequest struct {
	URL string `json:"url"`
}

type MeasurementPoint struct {
	Type    string  `json:"type"`
	Point1X float64 `json:"point_1_coordinate_x"`
	Point1Y float64 `json:"point_1_coordinate_y"`
	Point2X float64 `json:"point_2_coordinate_x"`
	Point2Y float64 `json:"point_2_coordinate_y"`
}

type UserMeasurementRequest struct {
	DicomUUID           string             `json:"dicom_uuid"`
	MeasurementKey      string             `json:"measurement_key"`
	MeasurementType     string             `json:"measurement_type"`
	KeyframeType        string             `json:"keyframe_type"`
	MeasurementMetadata []MeasurementPoint `json:"measurement_metadata"`
	FrameIndex          *int               `json:"frame_index,omitempty"`
	Value               *float64           `json:"value,omitempty"`
	Unit                string             `json:"unit,omitempty"`
	ExtraMetadata       map[string]any     `json:"extra_metadata,omitempty"`
}

type UserMeasurement struct {
	UUID            string    `json:"uuid"`
	CreatedAt       time.Time `json:"created_at"`
	MeasurementKey  string    `json:"measurement_key"`
	MeasurementType string    `json:"measurement_type"`
	KeyframeType    string    `json:"keyframe_type"`
	FrameIndex      *int      `json:"frame_index"`
	Value           *float64  `json:"value"`
	Unit            string    `json:"unit"`
}

// ResearchStudy is the all_studies representation, a study with its
// measurement values embedded.
type ResearchStudy struct {
	Study
	Measurements []MeasurementValue `json:"measurements"`
}

type VersionInfo struct {
	Version string `json:"version"`
}
