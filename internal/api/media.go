package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DefaultMaxUploadBytes caps article image uploads.
const DefaultMaxUploadBytes = 5 << 20

// imageTypes are the accepted upload formats. SVG is excluded: it can carry
// script and is served from the site origin.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// MediaHandler stores uploaded article images and serves them back.
type MediaHandler struct {
	dir      string
	maxBytes int64
	// urlPrefix is where GET /media/{filename} is reachable from clients.
	urlPrefix string
}

// NewMediaHandler creates a handler rooted at dir. maxBytes <= 0 selects
// DefaultMaxUploadBytes. basePath is the prefix the API router is mounted
// under, e.g. "/api".
func NewMediaHandler(dir string, maxBytes int64, basePath string) *MediaHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MediaHandler{
		dir:       dir,
		maxBytes:  maxBytes,
		urlPrefix: strings.TrimSuffix(basePath, "/") + "/media/",
	}
}

// safeName validates that name is a plain file name and returns its path
// under the media directory.
func (h *MediaHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", errors.New("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.dir, cleaned)
	if !strings.HasPrefix(abs, filepath.Clean(h.dir)+string(os.PathSeparator)) {
		return "", errors.New("path escapes media directory")
	}
	return abs, nil
}

// ServeFile handles GET /media/{filename}.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
	http.ServeFile(w, r, abs)
}

// Upload handles POST /admin/media (multipart/form-data, field "file").
// The content is sniffed and must be a PNG, JPEG, GIF or WebP image; the
// stored name is random and carries the detected extension.
//
//	@Summary		Upload an article image
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	MediaUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/media [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("image too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("image too large"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("image too large"))
		return
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody("only PNG, JPEG, GIF or WebP images are accepted, got "+mtype.String()))
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		writeError(w, err, "create media dir")
		return
	}

	name := uuid.NewString() + mtype.Extension()
	abs, err := h.safeName(name)
	if err != nil {
		writeError(w, err, "name upload")
		return
	}
	if err := writeFile(abs, data); err != nil {
		writeError(w, err, "store upload", slog.String("file", name))
		return
	}

	slog.Info("media uploaded",
		slog.String("file", name),
		slog.String("original", header.Filename),
		slog.String("mime", mtype.String()),
		slog.Int("size", len(data)))

	writeJSON(w, http.StatusCreated, MediaUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		MIME:     mtype.String(),
		URL:      h.urlPrefix + name,
	})
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
