// Package assets предоставляет клиент внешнего хостинга изображений.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNotConfigured возвращается, если адрес хостинга не задан.
var ErrNotConfigured = errors.New("asset upload not configured")

// Client загружает изображения и возвращает их публичный адрес.
type Client struct {
	baseURL    string
	preset     string
	httpClient *retryablehttp.Client
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient создаёт клиент для хостинга по адресу baseURL с пресетом загрузки preset.
// Запрос повторяется при 429 и 5xx с учётом Retry-After.
func NewClient(baseURL, preset string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		preset:     preset,
		httpClient: rc,
	}
}

// Upload отправляет файл и возвращает secure_url загруженного изображения.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", ErrNotConfigured
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("write preset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, base+"/image/upload", body.Bytes())
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			return "", fmt.Errorf("upload rejected: %s", result.Error.Message)
		}
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if result.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}

	return result.SecureURL, nil
}
