package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/travelrecords/backend/internal/domain"
)

// photoUploadResponse is the JSON body returned by POST /upload-photo.
// Clients persist photo_path on a record and use photo_url for display.
type photoUploadResponse struct {
	PhotoPath string `json:"photo_path"`
	PhotoURL  string `json:"photo_url"`
}

// UploadPhoto handles POST /upload-photo (multipart, field name "file").
// Returns 400 for non-image content types and unsupported extensions.
func (s *Server) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorDetail{Code: "validation_error", Message: `multipart field "file" is required`},
		})
		return
	}
	defer file.Close()

	upload, err := s.records.AttachPhoto(
		file,
		header.Header.Get("Content-Type"),
		header.Filename,
		s.baseURL(r),
	)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeValidation(w, http.StatusBadRequest, err)
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, photoUploadResponse{
		PhotoPath: upload.PhotoPath,
		PhotoURL:  upload.PhotoURL,
	})
}

// GetPhoto handles GET /uploads/photos/{filename}, streaming raw file bytes.
// http.ServeContent handles Content-Type detection, range requests, and
// conditional GETs from the modification time.
func (s *Server) GetPhoto(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	// A bare filename never contains a separator; reject traversal attempts
	// before they reach the filesystem.
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		writeNotFound(w, "photo not found")
		return
	}

	f, modTime, err := s.photos.Open("photos/" + filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "photo not found")
			return
		}
		writeInternal(w, err)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, filename, modTime, f)
}
