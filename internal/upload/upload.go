// Package upload sends admin images to the image host and validates them first.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"rent-admin/internal/notify"
	"rent-admin/pkg/config"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultMaxFileSize = 5 * 1024 * 1024
	DefaultMaxImages   = 10
	// ProductMaxImages is the cap of the product form
	ProductMaxImages = 5
)

var ErrTooManyImages = errors.New("upload: too many images")

// ValidationError rejects one file before any network call
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// File is one image received from the admin
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the file length in bytes
func (f File) Size() int64 { return int64(len(f.Data)) }

// Uploader posts images to a Cloudinary style unsigned upload endpoint
type Uploader struct {
	endpoint    string
	preset      string
	cloudName   string
	maxFileSize int64
	client      *http.Client
	notes       *notify.Center
}

func NewUploader(cfg config.UploadConfig, notes *notify.Center) *Uploader {
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Uploader{
		endpoint:    fmt.Sprintf("%s/v1_1/%s/image/upload", base, cfg.CloudName),
		preset:      cfg.UploadPreset,
		cloudName:   cfg.CloudName,
		maxFileSize: maxSize,
		client:      &http.Client{Timeout: 60 * time.Second},
		notes:       notes,
	}
}

// Validate checks the type and size of f
func (u *Uploader) Validate(f File) error {
	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(f.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{File: f.Name, Message: "Please select only image files"}
	}
	if f.Size() > u.maxFileSize {
		return &ValidationError{
			File:    f.Name,
			Message: fmt.Sprintf("File %s is too large. Must be less than %dMB", f.Name, u.maxFileSize/(1024*1024)),
		}
	}
	return nil
}

// Upload validates and sends one file, returning its hosted URL
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	if err := u.Validate(f); err != nil {
		prometheus.RecordImageUpload("rejected")
		return "", err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if err := w.WriteField("upload_preset", u.preset); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if err := w.WriteField("cloud_name", u.cloudName); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		prometheus.RecordImageUpload("error")
		return "", errors.Wrap(err, "upload image")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		prometheus.RecordImageUpload("error")
		return "", errors.Wrap(err, "read upload response")
	}
	if resp.StatusCode >= 300 {
		prometheus.RecordImageUpload("error")
		return "", errors.Errorf("upload image: status %d", resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.SecureURL == "" {
		prometheus.RecordImageUpload("error")
		return "", errors.New("upload image: no secure_url in response")
	}
	prometheus.RecordImageUpload("ok")
	logger.FromContext(ctx).Info("Image uploaded", zap.String("file", f.Name), zap.Int64("size", f.Size()))
	return out.SecureURL, nil
}

// UploadBatch appends the URLs of files to existing. The whole batch is
// refused when it would exceed limit; invalid files are skipped with a
// notification each. Any upload failure aborts the batch and existing is
// returned unchanged.
func (u *Uploader) UploadBatch(ctx context.Context, existing []string, files []File, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultMaxImages
	}
	result := append([]string{}, existing...)
	if len(existing)+len(files) > limit {
		u.notes.Error(fmt.Sprintf("You can only upload up to %d images", limit))
		return result, fmt.Errorf("%w: %d existing + %d new > %d", ErrTooManyImages, len(existing), len(files), limit)
	}

	for _, f := range files {
		if err := u.Validate(f); err != nil {
			prometheus.RecordImageUpload("rejected")
			u.notes.Error(err.Error())
			continue
		}
		url, err := u.Upload(ctx, f)
		if err != nil {
			logger.FromContext(ctx).Error("Error uploading files", zap.String("file", f.Name), zap.Error(err))
			u.notes.Error("Error uploading files to Cloudinary")
			return append([]string{}, existing...), err
		}
		result = append(result, url)
	}
	return result, nil
}
