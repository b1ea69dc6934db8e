package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// https://us2.encephalon.ai/docs/#studies
func (a EncephalonApiClient) ListStudies(nextPageUrl string, nameFilter string, uuidFilter string) ([]Study, string, *resty.Response, error) {
	resp := &PaginatedResponse[Study]{}
	reqUrl := nextPageUrl

	req := a.bearerR().SetResult(resp)
	if reqUrl == "" {
		reqUrl = a.apiUrl("studies")
		if nameFilter != "" {
			req.SetQueryParam("name", nameFilter)
		}
		if uuidFilter != "" {
			req.SetQueryParam("uuid", uuidFilter)
		}
	}

	res, err := req.Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list studies (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list studies (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) CreateStudy(study StudyRequest) (*Study, *resty.Response, error) {
	reqUrl := a.apiUrl("studies")

	created := &Study{}
	res, err := a.bearerR().
		SetBody(study).
		SetResult(created).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to create study (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to create study (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return created, res, nil
}

func (a EncephalonApiClient) GetStudy(studyId string) (*Study, *resty.Response, error) {
	reqUrl := a.apiUrl("studies", studyId)

	study := &Study{}
	res, err := a.bearerR().
		SetResult(study).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching study (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching study (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return study, res, nil
}

func (a EncephalonApiClient) UpdateStudy(studyId string, update StudyUpdate) (*Study, *resty.Response, error) {
	reqUrl := a.apiUrl("studies", studyId)

	updated := &Study{}
	res, err := a.bearerR().
		SetBody(update).
		SetResult(updated).
		Patch(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to update study (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to update study (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return updated, res, nil
}

func (a EncephalonApiClient) DeleteStudy(studyId string) (*resty.Response, error) {
	reqUrl := a.apiUrl("studies", studyId)

	res, err := a.bearerR().
		Delete(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to delete study (network or client error)")
		return res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to delete study (HTTP error)")
		return res, httpError(res, reqUrl)
	}

	return res, nil
}
