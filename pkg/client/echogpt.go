package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// ListEchoGPTReports returns all EchoGPT responses, this endpoint is not
// paginated.
func (a EncephalonApiClient) ListEchoGPTReports() ([]EchoGPTReport, *resty.Response, error) {
	reqUrl := a.apiUrl("echogpt", "report")

	reports := &[]EchoGPTReport{}
	res, err := a.tokenR().
		SetResult(reports).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list echogpt reports (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list echogpt reports (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return *reports, res, nil
}

func (a EncephalonApiClient) GetEchoGPTReport(reportId string) (*EchoGPTReport, *resty.Response, error) {
	reqUrl := a.apiUrl("echogpt", "report", reportId)

	report := &EchoGPTReport{}
	res, err := a.tokenR().
		SetResult(report).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching echogpt report (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching echogpt report (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return report, res, nil
}
