package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/easyeats/easyeats/internal/logging"
	"github.com/easyeats/easyeats/internal/storage"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/heic": {},
}

// parseForm accepts multipart and url-encoded bodies alike.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

// formValue returns the first value present under any of keys.
func formValue(r *http.Request, keys ...string) (string, bool) {
	for _, key := range keys {
		if values, ok := r.PostForm[key]; ok && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

// formImage opens the uploaded file under field, if any. The returned func closes it.
func formImage(r *http.Request, field string) (*storage.Image, func(), error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, func() {}, nil
	}

	header := r.MultipartForm.File[field][0]
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, func() {}, fmt.Errorf("unsupported content type %q", contentType)
	}
	if header.Size == 0 {
		return nil, func() {}, errors.New("empty upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}

	img := &storage.Image{Filename: header.Filename, ContentType: contentType, Body: file}
	return img, func() { _ = file.Close() }, nil
}

// discardImage removes an upload whose owning row was never written.
func discardImage(ctx context.Context, images ImageStorage, location string) {
	if location == "" || images == nil {
		return
	}
	logger := logging.FromContext(ctx)
	logger.Warn("discarding orphaned image upload", "location", location)
	if err := images.DeleteImage(ctx, location); err != nil {
		logger.Error("failed to delete orphaned image", "location", location, "error", err)
	}
}
