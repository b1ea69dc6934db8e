package client

import (
	"io"
	"net/url"
	"path"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/iCardioAI/encephalon-examples/pkg/httpclient"
	"github.com/rs/zerolog/log"

	"resty.dev/v3"
)

// https://us2.encephalon.ai/docs/#dicoms
func (a EncephalonApiClient) ListDicoms(nextPageUrl string, studyId string) ([]Dicom, string, *resty.Response, error) {
	resp := &PaginatedResponse[Dicom]{}
	reqUrl := nextPageUrl

	// the study filter only applies to the first page, the next url carries it
	if reqUrl == "" {
		reqUrl = a.apiUrl("dicoms")
		req := a.bearerR().SetResult(resp)
		if studyId != "" {
			req.SetQueryParam("study", studyId)
		}
		res, err := req.Get(reqUrl)

		if err != nil {
			log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list dicoms (network or client error)")
			return nil, "", res, err
		}

		if res.StatusCode() >= 400 {
			log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list dicoms (HTTP error)")
			return nil, "", res, httpError(res, reqUrl)
		}

		return resp.Results, resp.Next, res, nil
	}

	res, err := a.bearerR().
		SetResult(resp).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to list dicoms (network or client error)")
		return nil, "", res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to list dicoms (HTTP error)")
		return nil, "", res, httpError(res, reqUrl)
	}

	return resp.Results, resp.Next, res, nil
}

func (a EncephalonApiClient) GetDicom(dicomId string) (*Dicom, *resty.Response, error) {
	reqUrl := a.apiUrl("dicoms", dicomId)

	dicom := &Dicom{}
	res, err := a.bearerR().
		SetResult(dicom).
		Get(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed fetching dicom (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed fetching dicom (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return dicom, res, nil
}

// UploadDicom attaches a DICOM file to an existing study.
func (a EncephalonApiClient) UploadDicom(studyId string, fileName string, content io.Reader) (*Dicom, *resty.Response, error) {
	reqUrl := a.apiUrl("dicoms")

	dicom := &Dicom{}
	res, err := a.bearerR().
		SetMultipartFields(&resty.MultipartField{
			Name:        "file",
			FileName:    fileName,
			ContentType: "application/dicom",
			Reader:      content,
		}).
		SetMultipartFormData(map[string]string{"study": studyId}).
		SetResult(dicom).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Str("file", fileName).Msg("Failed to upload dicom (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("file", fileName).Str("response", res.String()).Msg("Failed to upload dicom (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return dicom, res, nil
}

// UploadDicomIdempotent uploads without a study, the server creates one on
// the fly or reuses the study the file already belongs to.
func (a EncephalonApiClient) UploadDicomIdempotent(fileName string, content io.Reader) (*Dicom, *resty.Response, error) {
	reqUrl := a.apiUrl("idempotent_dicom")

	dicom := &Dicom{}
	res, err := a.bearerR().
		SetMultipartFields(&resty.MultipartField{
			Name:        "file",
			FileName:    fileName,
			ContentType: "application/dicom",
			Reader:      content,
		}).
		SetResult(dicom).
		Post(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Str("file", fileName).Msg("Failed to upload dicom (network or client error)")
		return nil, res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("file", fileName).Str("response", res.String()).Msg("Failed to upload dicom (HTTP error)")
		return nil, res, httpError(res, reqUrl)
	}

	return dicom, res, nil
}

// DownloadDicomFile fetches the binary file content. The endpoint redirects
// to object storage, the retryable client follows it and retries transient
// upstream errors.
func (a EncephalonApiClient) DownloadDicomFile(dicomId string, fileName string) ([]byte, error) {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return nil, err
	}

	client := httpclient.GetEncephalonHTTPClient(nil)
	u.Path = path.Join(u.Path, "api", "v2", "dicoms", "file", dicomId, fileName)
	s := u.String() + "/"
	req, err := retryablehttp.NewRequest("GET", s, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+a.Token)
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		log.Error().Int("status", res.StatusCode).Str("url", s).Msg("Failed downloading dicom file (HTTP error)")
		return nil, &APIError{StatusCode: res.StatusCode, URL: s, Body: string(body)}
	}

	return body, nil
}

func (a EncephalonApiClient) DeleteDicom(dicomId string) (*resty.Response, error) {
	reqUrl := a.apiUrl("dicoms", dicomId)

	res, err := a.bearerR().
		Delete(reqUrl)

	if err != nil {
		log.Error().Err(err).Str("url", reqUrl).Msg("Failed to delete dicom (network or client error)")
		return res, err
	}

	if res.StatusCode() >= 400 {
		log.Error().Int("status", res.StatusCode()).Str("url", reqUrl).Str("response", res.String()).Msg("Failed to delete dicom (HTTP error)")
		return res, httpError(res, reqUrl)
	}

	return res, nil
}
