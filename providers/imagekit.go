package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quickblog/config"
)

// Transformation describes the delivery-time image optimization applied by
// the CDN when building a URL.
type Transformation struct {
	Quality string
	Format  string
	Width   int
}

// ImageUploader is the integration boundary to the image storage provider.
// Upload stores raw bytes and returns the provider-side file path; URL turns
// that path into a publicly servable delivery URL.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, fileName, folder string) (string, error)
	URL(path string, tr Transformation) string
}

// ImageKit talks to the ImageKit upload REST API and builds delivery URLs
// with path transformations.
type ImageKit struct {
	privateKey     string
	urlEndpoint    string
	uploadEndpoint string
	client         *http.Client
}

// NewImageKit builds an ImageKit client from configuration.
func NewImageKit(cfg config.AppConfig) *ImageKit {
	return &ImageKit{
		privateKey:     cfg.ImageKitPrivateKey,
		urlEndpoint:    strings.TrimSuffix(cfg.ImageKitURLEndpoint, "/"),
		uploadEndpoint: cfg.ImageKitUploadEndpoint,
		client:         &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Upload sends the file to ImageKit and returns the stored file path.
func (ik *ImageKit) Upload(ctx context.Context, data []byte, fileName, folder string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.WriteField("fileName", fileName); err != nil {
		return "", err
	}
	if err := w.WriteField("folder", folder); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ik.uploadEndpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	// ImageKit authenticates uploads with the private key as basic auth user.
	req.SetBasicAuth(ik.privateKey, "")

	resp, err := ik.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("imagekit upload: unexpected response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Message != "" {
			return "", fmt.Errorf("imagekit upload: %s", parsed.Message)
		}
		return "", fmt.Errorf("imagekit upload: status %d", resp.StatusCode)
	}
	if parsed.FilePath == "" {
		return "", fmt.Errorf("imagekit upload: missing filePath in response")
	}
	return parsed.FilePath, nil
}

// URL builds a delivery URL for a stored path, encoding the transformation
// as a /tr:.../ path segment.
func (ik *ImageKit) URL(path string, tr Transformation) string {
	segment := trSegment(tr)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if segment == "" {
		return ik.urlEndpoint + path
	}
	return ik.urlEndpoint + "/tr:" + segment + path
}

func trSegment(tr Transformation) string {
	parts := make([]string, 0, 3)
	if tr.Quality != "" {
		parts = append(parts, "q-"+tr.Quality)
	}
	if tr.Format != "" {
		parts = append(parts, "f-"+tr.Format)
	}
	if tr.Width > 0 {
		parts = append(parts, "w-"+strconv.Itoa(tr.Width))
	}
	return strings.Join(parts, ",")
}
