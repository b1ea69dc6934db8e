package client

import (
	"net/url"
	"path"

	"github.com/iCardioAI/encephalon-examples/pkg/config"
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// Docs: https://us2.encephalon.ai/docs/
type EncephalonApiClient struct {
	Client  resty.Client
	BaseURL string
	Token   string
}

func NewClient(cfg config.Config) EncephalonApiClient {
	apiClient := EncephalonApiClient{
		Client:  *resty.New().SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
		BaseURL: cfg.URL,
		Token:   cfg.Token,
	}
	apiClient.Client.AddRetryHooks(
		func(res *resty.Response, err error) {
			if res.StatusCode() == 429 {
				log.Info().Int("status", res.StatusCode()).Msg("Retrying request, we are rate limited")
			} else {
				log.Info().Int("status", res.StatusCode()).Msg("Retrying request, not due to rate limit")
			}
		},
	)
	return apiClient
}

// All v2 routes are registered with a trailing slash, a missing one costs a
// redirect roundtrip per request.
func (a EncephalonApiClient) apiUrl(segments ...string) string {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", a.BaseURL).Msg("Unable to parse API base url")
	}
	u.Path = path.Join(append([]string{u.Path, "api", "v2"}, segments...)...)
	return u.String() + "/"
}

// The API runs two authentication schemes: study, dicom and scan routes
// expect Bearer, all other routes the DRF Token scheme.
func (a EncephalonApiClient) bearerR() *resty.Request {
	return a.Client.R().SetHeader("Authorization", "Bearer "+a.Token)
}

func (a EncephalonApiClient) tokenR() *resty.Request {
	return a.Client.R().SetHeader("Authorization", "Token "+a.Token)
}

func httpError(res *resty.Response, reqUrl string) *APIError {
	return &APIError{StatusCode: res.StatusCode(), URL: reqUrl, Body: res.String()}
}
