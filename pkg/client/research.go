package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// ResearchFilter narrows the all_studies listing. Zero fields are left out
// of the query. Dates are ISO8601, list-valued filters are comma separated.
type ResearchFilter struct {
	Query         string
	Name          string
	UUID          string
	CreatedAfter  string
	CreatedBefore string
	ScanProduct   string
	ScanStatus    string
	UserEmail     string
	ViewTypes     string
	Diseases      string
	Measurements  string
}

func (f ResearchFilter) apply(req *resty.Request) {
	if f.Query != "" {
		req.SetQueryParam("q", f.Query)
	}
	if f.Name != "" {
		req.SetQueryParam("name", f.Name)
	}
	if f.UUID != "" {
		req.SetQueryParam("uuid", f.UUID)
	}
	if f.CreatedAfter != "" {
		req.SetQueryParam("created_at__gte", f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		req.SetQueryParam("created_at__lte", f.CreatedBefore)
	}
	if f.ScanProduct != "" {
		req.SetQueryParam("scan_product", f.ScanProduct)
	}
	if f.ScanStatus != "" {
		req.SetQueryParam("scan_status", f.ScanStatus)
	}
	if f.UserEmail != "" {
		req.SetQueryParam("user_email", f.UserEmail)
	}
	if f.ViewTypes != "" {
		req.SetQueryParam("view_types", f.ViewTypes)
	}
	if f.Diseases != "" {
		req.SetQueryParam("diseases", f.Diseases)
	}
	if f.Measurements != "" {
		req.SetQueryParam("measurements", f.Measurements)
	}
}

// ListResearchStudies queries the all_studies view, studies with their
// measurement values embedded.
func (a EncephalonApiClient) ListResearchStudies(nextPageUrl string, filter ResearchFilter) ([]ResearchStudy, string, *resty.Response, error) {
	resp := &PaginatedResponse[ResearchStudy]{}
	reqUrl := nextPageUrl

	req := a.tokenR().SetResult(resp)
	if reqUrl == "" {
		reqUrl = a.apiUrl("all_studies")
		filter.apply(req)
	}

	res, err := req.Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list research studies (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list research studies (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) GetResearchStudy(studyId string) (*ResearchStudy, *resty.Response, error) {
	reqUrl := a.apiUrl("all_studies", studyId)

	study := &ResearchStudy{}
	res, err := a.tokenR().
		SetResult(study).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching research study (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching research study (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return study, res, nil
}

// GetStudyMetrics returns the account wide usage metrics as raw JSON, the
// shape varies with the enabled products.
func (a EncephalonApiClient) GetStudyMetrics() ([]byte, *resty.Response, error) {
	reqUrl := a.apiUrl("all_studies", "metrics")

	res, err := a.tokenR().
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching study metrics (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching study metrics (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return res.Bytes(), res, nil
}

// GetFilterMetadata returns the server side filter vocabulary as raw JSON.
func (a EncephalonApiClient) GetFilterMetadata() ([]byte, *resty.Response, error) {
	reqUrl := a.apiUrl("all_studies", "filters", "metadata")

	res, err := a.tokenR().
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching filter metadata (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching filter metadata (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return res.Bytes(), res, nil
}
