package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// https://us2.encephalon.ai/docs/#reports
func (a EncephalonApiClient) ListReports(nextPageUrl string, studyId string, scanId string) ([]Report, string, *resty.Response, error) {
	resp := &PaginatedResponse[Report]{}
	reqUrl := nextPageUrl

	req := a.tokenR().SetResult(resp)
	if reqUrl == "" {
		reqUrl = a.apiUrl("reports")
		if studyId != "" {
			req.SetQueryParam("study", studyId)
		}
		if scanId != "" {
			req.SetQueryParam("scan", scanId)
		}
	}

	res, err := req.Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list reports (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list reports (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) GetReport(reportId string) (*Report, *resty.Response, error) {
	reqUrl := a.apiUrl("reports", reportId)

	report := &Report{}
	res, err := a.tokenR().
		SetResult(report).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching report (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching report (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return report, res, nil
}

// GetReportHTML returns the server rendered report blocks, ready for
// embedding or text extraction.
func (a EncephalonApiClient) GetReportHTML(reportId string) ([]ReportHTMLSection, *resty.Response, error) {
	reqUrl := a.apiUrl("reports", reportId, "html")

	sections := &[]ReportHTMLSection{}
	res, err := a.tokenR().
		SetResult(sections).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching report html (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching report html (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return *sections, res, nil
}
