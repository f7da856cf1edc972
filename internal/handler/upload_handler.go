package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"rent-admin/internal/upload"
	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// UploadResponse lists the image URLs after the upload
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// Upload sends the files of a multipart form to the image host and returns
// existing[] followed by the new URLs
func (h *Handler) Upload(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	log := logger.FromEcho(c)

	mf, err := c.MultipartForm()
	if err != nil {
		log.Warn("Invalid upload form", zap.Error(err))
		return badRequest(c, "Invalid upload form")
	}

	limit := w.MaxImages
	if v := c.FormValue("max"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 1 {
			return badRequest(c, "max must be a positive number")
		}
		limit = n
	}

	headers := append(mf.File["files"], mf.File["files[]"]...)
	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			log.Error("Failed to read uploaded file", zap.String("file", fh.Filename), zap.Error(err))
			return badRequest(c, "Failed to read "+fh.Filename)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return badRequest(c, "No files to upload")
	}

	urls, err := w.Uploader.UploadBatch(reqCtx(c), append(mf.Value["existing"], mf.Value["existing[]"]...), files, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, UploadResponse{URLs: urls})
}

func readFile(fh *multipart.FileHeader) (upload.File, error) {
	src, err := fh.Open()
	if err != nil {
		return upload.File{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return upload.File{}, err
	}
	return upload.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}
