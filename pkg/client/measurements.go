package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// CreateUserMeasurement records a manual measurement taken on a DICOM frame,
// supplementing or validating the AI generated ones.
func (a EncephalonApiClient) CreateUserMeasurement(measurement UserMeasurementRequest) (*UserMeasurement, *resty.Response, error) {
	reqUrl := a.apiUrl("measurements")

	created := &UserMeasurement{}
	res, err := a.tokenR().
		SetBody(measurement).
		SetResult(created).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to create measurement (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to create measurement (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return created, res, nil
}
