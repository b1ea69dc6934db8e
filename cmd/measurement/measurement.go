package measurement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type MeasurementOptions struct {
	DicomUUID  string
	Key        string
	Type       string
	Keyframe   string
	Lines      []string
	FrameIndex int
	Value      float64
	Unit       string
}

var options = MeasurementOptions{}

func NewMeasurementRootCmd() *cobra.Command {
	measurementCmd := &cobra.Command{
		Use:     "measurement [command]",
		Short:   "Record manual measurements on DICOM frames",
		GroupID: "resources",
	}

	measurementCmd.AddCommand(NewCreateCmd())

	return measurementCmd
}

func NewCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user measurement on a DICOM",
		Long: `Create a user measurement on a DICOM. Line annotations are given as
x1,y1,x2,y2 pixel coordinates and can be repeated for multi-line measurements.`,
		Example: `
# Record an ejection fraction reading with its annotation
encephalon measurement create --dicom 9ec344e6 --key lvef --type LINEAR --keyframe ED \
  --line 120.5,80.25,240,160.75 --frame-index 14 --value 61.5 --unit %
		`,
		Run: Create,
	}
	createCmd.Flags().StringVarP(&options.DicomUUID, "dicom", "d", "", "DICOM UUID the measurement belongs to")
	err := createCmd.MarkFlagRequired("dicom")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking dicom required")
	}
	createCmd.Flags().StringVarP(&options.Key, "key", "k", "", "Measurement key, e.g. lvef")
	err = createCmd.MarkFlagRequired("key")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking key required")
	}
	createCmd.Flags().StringVar(&options.Type, "type", "", "Measurement type, e.g. LINEAR")
	err = createCmd.MarkFlagRequired("type")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking type required")
	}
	createCmd.Flags().StringVar(&options.Keyframe, "keyframe", "", "Keyframe type, e.g. ED or ES")
	err = createCmd.MarkFlagRequired("keyframe")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking keyframe required")
	}
	createCmd.Flags().StringArrayVar(&options.Lines, "line", []string{}, "Line annotation as x1,y1,x2,y2 (repeatable)")
	createCmd.Flags().IntVar(&options.FrameIndex, "frame-index", 0, "Frame the measurement was taken on")
	createCmd.Flags().Float64Var(&options.Value, "value", 0, "Measured value")
	createCmd.Flags().StringVar(&options.Unit, "unit", "", "Unit of the measured value, e.g. cm or %")

	return createCmd
}

func Create(cmd *cobra.Command, args []string) {
	request := client.UserMeasurementRequest{
		DicomUUID:       options.DicomUUID,
		MeasurementKey:  options.Key,
		MeasurementType: options.Type,
		KeyframeType:    options.Keyframe,
		Unit:            options.Unit,
	}

	for _, line := range options.Lines {
		point, err := parseLinePoints(line)
		if err != nil {
			log.Fatal().Err(err).Str("line", line).Msg("Invalid line annotation")
		}
		request.MeasurementMetadata = append(request.MeasurementMetadata, point)
	}

	// Zero is a valid frame index and value, only send what was set.
	if cmd.Flags().Changed("frame-index") {
		request.FrameIndex = &options.FrameIndex
	}
	if cmd.Flags().Changed("value") {
		request.Value = &options.Value
	}

	apiClient := common.BuildClient()

	measurement, _, err := apiClient.CreateUserMeasurement(request)
	if err != nil {
		log.Fatal().Err(err).Str("dicom", options.DicomUUID).Msg("Failed creating measurement")
	}

	event := log.Info().Str("uuid", measurement.UUID).Str("key", measurement.MeasurementKey)
	if measurement.Value != nil {
		event = event.Float64("value", *measurement.Value).Str("unit", measurement.Unit)
	}
	event.Msg("Measurement created")
}

func parseLinePoints(spec string) (client.MeasurementPoint, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return client.MeasurementPoint{}, fmt.Errorf("expected 4 comma separated coordinates, got %d", len(parts))
	}

	coords := [4]float64{}
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return client.MeasurementPoint{}, fmt.Errorf("coordinate %q is not a number", part)
		}
		coords[i] = value
	}

	return client.MeasurementPoint{
		Type:    "LINE",
		Point1X: coords[0],
		Point1Y: coords[1],
		Point2X: coords[2],
		Point2Y: coords[3],
	}, nil
}
