package client

import (
	"net/url"
	"path"

	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// GetVersion reports the deployed API version. Unlike every other route this
// one is registered without a trailing slash.
func (a EncephalonApiClient) GetVersion() (*VersionInfo, *resty.Response, error) {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", a.BaseURL).Msg("Unable to parse API base url")
	}
	u.Path = path.Join(u.Path, "api", "v2", "version")
	reqUrl := u.String()

	version := &VersionInfo{}
	res, err := a.tokenR().
		SetResult(version).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching API version (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching API version (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return version, res, nil
}
