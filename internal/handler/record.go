package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/travelrecords/backend/internal/domain"
)

// createRecordRequest is the JSON body for POST /records.
// Latitude and longitude are pointers so "missing" and "zero" are
// distinguishable — 0,0 is a valid coordinate (Gulf of Guinea).
type createRecordRequest struct {
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Description  string   `json:"description"`
	PhotoPath    string   `json:"photo_path"`
}

// updateRecordRequest is the JSON body for PUT /records/{id}.
// Every field is optional; omitted fields are left unchanged.
type updateRecordRequest struct {
	LocationName *string  `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Description  *string  `json:"description"`
	PhotoPath    *string  `json:"photo_path"`
}

// recordResponse is the outward JSON shape of a record.
// photo_path and photo_url are always present, null when the record has no
// photo, so clients never need to probe for the keys.
type recordResponse struct {
	ID           string    `json:"id"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Description  *string   `json:"description"`
	PhotoPath    *string   `json:"photo_path"`
	PhotoURL     *string   `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// deleteResponse confirms a successful delete.
type deleteResponse struct {
	Message string `json:"message"`
}

// CreateRecord handles POST /records.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeBadRequest(w, "latitude and longitude are required")
		return
	}

	rec := domain.Record{
		LocationName: req.LocationName,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Description:  req.Description,
		PhotoPath:    req.PhotoPath,
	}

	created, err := s.records.Create(r.Context(), rec, s.baseURL(r))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeValidation(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, viewToResponse(created))
}

// ListRecords handles GET /records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	views, err := s.records.List(r.Context(), s.baseURL(r))
	if err != nil {
		writeInternal(w, err)
		return
	}

	out := make([]recordResponse, len(views))
	for i, v := range views {
		out[i] = viewToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	view, err := s.records.GetByID(r.Context(), id, s.baseURL(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "record not found")
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// UpdateRecord handles PUT /records/{id} with partial-field semantics.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	upd := domain.RecordUpdate{
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Description:  req.Description,
		PhotoPath:    req.PhotoPath,
	}

	updated, err := s.records.Update(r.Context(), id, upd, s.baseURL(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "record not found")
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			writeValidation(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewToResponse(updated))
}

// DeleteRecord handles DELETE /records/{id}.
// A successful delete removes both the row and any associated photo file.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := s.records.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "record not found")
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: "record deleted"})
}

// recordID parses the {id} path parameter. Anything that is not a UUID cannot
// name an existing record, so malformed IDs get the same 404 as unknown ones.
func recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "record not found")
		return uuid.UUID{}, false
	}
	return id, true
}

// viewToResponse converts a domain.RecordView into the response DTO.
// Empty strings become nil pointers so optional fields serialize as null.
func viewToResponse(v domain.RecordView) recordResponse {
	return recordResponse{
		ID:           v.ID.String(),
		LocationName: v.LocationName,
		Latitude:     v.Latitude,
		Longitude:    v.Longitude,
		Description:  nilIfEmpty(v.Description),
		PhotoPath:    nilIfEmpty(v.PhotoPath),
		PhotoURL:     nilIfEmpty(v.PhotoURL),
		CreatedAt:    v.CreatedAt,
	}
}

// nilIfEmpty converts an empty string to a nil pointer.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
