package client

import (
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// https://us2.encephalon.ai/docs/#webhooks
func (a EncephalonApiClient) ListWebhooks(nextPageUrl string) ([]Webhook, string, *resty.Response, error) {
	reqUrl := nextPageUrl
	if reqUrl == "" {
		reqUrl = a.apiUrl("webhook")
	}

	resp := &PaginatedResponse[Webhook]{}
	res, err := a.tokenR().
		SetResult(resp).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list webhooks (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list webhooks (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) CreateWebhook(webhookUrl string) (*Webhook, *resty.Response, error) {
	reqUrl := a.apiUrl("webhook")

	created := &Webhook{}
	res, err := a.tokenR().
		SetBody(WebhookRequest{URL: webhookUrl}).
		SetResult(created).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to create webhook (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to create webhook (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return created, res, nil
}

func (a EncephalonApiClient) GetWebhook(webhookId string) (*Webhook, *resty.Response, error) {
	reqUrl := a.apiUrl("webhook", webhookId)

	webhook := &Webhook{}
	res, err := a.tokenR().
		SetResult(webhook).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching webhook (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching webhook (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return webhook, res, nil
}

func (a EncephalonApiClient) UpdateWebhook(webhookId string, webhookUrl string) (*Webhook, *resty.Response, error) {
	reqUrl := a.apiUrl("webhook", webhookId)

	updated := &Webhook{}
	res, err := a.tokenR().
		SetBody(WebhookRequest{URL: webhookUrl}).
		SetResult(updated).
		Patch(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to update webhook (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to update webhook (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return updated, res, nil
}

func (a EncephalonApiClient) DeleteWebhook(webhookId string) (*resty.Response, error) {
	reqUrl := a.apiUrl("webhook", webhookId)

	res, err := a.tokenR().
		Delete(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to delete webhook (network or client error)")
		return res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to delete webhook (HTTP error)")
		return res, httpError(res, reqUrl)
	}

	return res, nil
}
