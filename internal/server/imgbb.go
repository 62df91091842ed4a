package server

import (
	"bytes"
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pritampani/UnivMarket/internal/apperr"
)

const imgbbEndpoint = "https://api.imgbb.com/1/upload"

// UploadResult is the subset of the ImgBB response returned to clients.
type UploadResult struct {
	URL        string `json:"url"`
	DisplayURL string `json:"display_url"`
	DeleteURL  string `json:"delete_url"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

type imgbbResponse struct {
	Data struct {
		UploadResult
		Thumb struct {
			URL string `json:"url"`
		} `json:"thumb"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Uploader relays image uploads to the ImgBB hosting API so the key never
// reaches the client.
type Uploader struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

// NewUploader builds an uploader for the given API key. An empty key yields
// an unconfigured uploader that rejects uploads.
func NewUploader(apiKey string, timeout time.Duration) *Uploader {
	return &Uploader{
		client:   resty.New().SetTimeout(timeout),
		apiKey:   apiKey,
		endpoint: imgbbEndpoint,
	}
}

// Configured reports whether an API key is present.
func (u *Uploader) Configured() bool {
	return u.apiKey != ""
}

// Upload sends the image bytes to ImgBB and returns the hosted URLs.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	if !u.Configured() {
		return nil, apperr.New(apperr.ErrNotConfigured, "imgbb api key is not set")
	}

	var out imgbbResponse
	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParam("key", u.apiKey).
		SetFileReader("image", name, bytes.NewReader(data)).
		SetResult(&out).
		Post(u.endpoint)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUploadFailed, "imgbb request failed", err)
	}
	if resp.StatusCode() != 200 || !out.Success {
		return nil, apperr.New(apperr.ErrUploadFailed, "imgbb rejected the upload")
	}

	result := out.Data.UploadResult
	result.Thumbnail = out.Data.Thumb.URL
	return &result, nil
}
