package client

import (
	"context"

	"github.com/perimeterx/marshmallow"
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// The scan payload is an open set, the pipeline adds fields between API
// releases. Known fields are typed, everything else lands in Extra.
func decodeScan(data []byte) (*Scan, error) {
	scan := &Scan{}
	extra, err := marshmallow.Unmarshal(data, scan, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return nil, err
	}
	scan.Extra = extra
	return scan, nil
}

// https://us2.encephalon.ai/docs/#scans
func (a EncephalonApiClient) CreateScan(scan ScanRequest) (*Scan, *resty.Response, error) {
	reqUrl := a.apiUrl("scans")

	res, err := a.bearerR().
		SetBody(scan).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to create scan (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to create scan (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	created, err := decodeScan(res.Bytes())
	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to decode scan response")
		return nil, res, err
	}

	return created, res, nil
}

func (a EncephalonApiClient) ListScans(nextPageUrl string, studyId string) ([]Scan, string, *resty.Response, error) {
	resp := &PaginatedResponse[Scan]{}
	reqUrl := nextPageUrl

	req := a.bearerR().SetResult(resp)
	if reqUrl == "" {
		reqUrl = a.apiUrl("scans")
		if studyId != "" {
			req.SetQueryParam("study", studyId)
		}
	}

	res, err := req.Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list scans (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list scans (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) GetScan(scanId string) (*Scan, *resty.Response, error) {
	return a.GetScanWithContext(context.Background(), scanId)
}

func (a EncephalonApiClient) GetScanWithContext(ctx context.Context, scanId string) (*Scan, *resty.Response, error) {
	reqUrl := a.apiUrl("scans", scanId)

	res, err := a.bearerR().
		SetContext(ctx).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching scan (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching scan (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	scan, err := decodeScan(res.Bytes())
	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to decode scan response")
		return nil, res, err
	}

	return scan, res, nil
}

func (a EncephalonApiClient) DeleteScan(scanId string) (*resty.Response, error) {
	reqUrl := a.apiUrl("scans", scanId)

	res, err := a.bearerR().
		Delete(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to delete scan (network or client error)")
		return res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to delete scan (HTTP error)")
		return res, httpError(res, reqUrl)
	}

	return res, nil
}
