// Package service implements the business logic of the Travel Record API.
// It composes the record repository and the photo store, and is the sole
// owner of the "attach photo URL at response time" rule.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelrecords/backend/internal/domain"
	"github.com/travelrecords/backend/internal/photo"
	"github.com/travelrecords/backend/internal/repo"
)

// PhotoStore defines the file operations the record service depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets service
// tests inject a fake without touching the filesystem.
type PhotoStore interface {
	Save(r io.Reader, contentType, filename string) (photo.StoredPhoto, error)
	Delete(relativePath string) error
	Exists(relativePath string) bool
}

// RecordService implements the record CRUD and photo upload operations.
type RecordService struct {
	records repo.RecordRepo
	photos  PhotoStore
}

// NewRecordService constructs a RecordService backed by the provided
// repository and photo store.
func NewRecordService(records repo.RecordRepo, photos PhotoStore) *RecordService {
	return &RecordService{records: records, photos: photos}
}

// Create validates the input, assigns ID and CreatedAt, and persists.
// Returns domain.ErrValidation if input violates the data-model constraints
// or references a photo_path that was never uploaded.
func (s *RecordService) Create(ctx context.Context, rec domain.Record, baseURL string) (domain.RecordView, error) {
	if err := s.validateRecord(rec); err != nil {
		return domain.RecordView{}, err
	}

	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()

	created, err := s.records.Insert(ctx, rec)
	if err != nil {
		return domain.RecordView{}, fmt.Errorf("service.RecordService.Create: %w", err)
	}
	return s.view(created, baseURL), nil
}

// List returns all records, each projected with its derived photo URL.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RecordService) List(ctx context.Context, baseURL string) ([]domain.RecordView, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RecordService.List: %w", err)
	}

	views := make([]domain.RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, s.view(rec, baseURL))
	}
	return views, nil
}

// GetByID returns a single record by ID with its derived photo URL.
// Returns domain.ErrNotFound if no record with that ID exists.
func (s *RecordService) GetByID(ctx context.Context, id uuid.UUID, baseURL string) (domain.RecordView, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.RecordView{}, fmt.Errorf("service.RecordService.GetByID: %w", err)
	}
	return s.view(rec, baseURL), nil
}

// Update validates any bounded fields present in the partial update, then
// forwards it to the repository. Omitted fields are left untouched.
// Returns domain.ErrValidation for invalid provided fields, domain.ErrNotFound
// if the record does not exist.
func (s *RecordService) Update(ctx context.Context, id uuid.UUID, upd domain.RecordUpdate, baseURL string) (domain.RecordView, error) {
	if err := s.validateUpdate(upd); err != nil {
		return domain.RecordView{}, err
	}

	updated, err := s.records.Update(ctx, id, upd)
	if err != nil {
		return domain.RecordView{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	return s.view(updated, baseURL), nil
}

// Delete removes a record and its associated photo file, if any.
// The file is deleted before the row: an interrupted delete leaves an orphaned
// file (recoverable by a sweep) rather than a row pointing at nothing.
// Returns domain.ErrNotFound if the record does not exist.
func (s *RecordService) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}

	if rec.PhotoPath != "" {
		if err := s.photos.Delete(rec.PhotoPath); err != nil {
			return fmt.Errorf("service.RecordService.Delete: %w", err)
		}
	}

	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	return nil
}

// AttachPhoto stores an uploaded image and returns its relative path and URL.
// Upload is deliberately decoupled from record create/update: the client
// uploads first, then references the returned photo_path in a record payload.
// Returns domain.ErrValidation for non-image content or unsupported extensions.
func (s *RecordService) AttachPhoto(r io.Reader, contentType, filename, baseURL string) (domain.PhotoUpload, error) {
	stored, err := s.photos.Save(r, contentType, filename)
	if err != nil {
		return domain.PhotoUpload{}, fmt.Errorf("service.RecordService.AttachPhoto: %w", err)
	}
	return domain.PhotoUpload{
		PhotoPath: stored.RelativePath,
		PhotoURL:  photo.URL(baseURL, stored.RelativePath),
	}, nil
}

// view projects a stored record into its outward-facing form.
// PhotoURL is derived here, never persisted.
func (s *RecordService) view(rec domain.Record, baseURL string) domain.RecordView {
	v := domain.RecordView{Record: rec}
	if rec.PhotoPath != "" {
		v.PhotoURL = photo.URL(baseURL, rec.PhotoPath)
	}
	return v
}

// validateRecord enforces the data-model constraints on a full record.
//   - LocationName must be non-empty (whitespace-only is rejected).
//   - Latitude must be within [-90, 90], longitude within [-180, 180].
//   - PhotoPath, if set, must reference a previously uploaded file.
func (s *RecordService) validateRecord(rec domain.Record) error {
	if strings.TrimSpace(rec.LocationName) == "" {
		return fmt.Errorf("%w: location_name is required", domain.ErrValidation)
	}
	if err := validateLatitude(rec.Latitude); err != nil {
		return err
	}
	if err := validateLongitude(rec.Longitude); err != nil {
		return err
	}
	if rec.PhotoPath != "" {
		return s.validatePhotoPath(rec.PhotoPath)
	}
	return nil
}

// validateUpdate enforces the same constraints, but only on fields present.
func (s *RecordService) validateUpdate(upd domain.RecordUpdate) error {
	if upd.LocationName != nil && strings.TrimSpace(*upd.LocationName) == "" {
		return fmt.Errorf("%w: location_name must not be empty", domain.ErrValidation)
	}
	if upd.Latitude != nil {
		if err := validateLatitude(*upd.Latitude); err != nil {
			return err
		}
	}
	if upd.Longitude != nil {
		if err := validateLongitude(*upd.Longitude); err != nil {
			return err
		}
	}
	if upd.PhotoPath != nil && *upd.PhotoPath != "" {
		return s.validatePhotoPath(*upd.PhotoPath)
	}
	return nil
}

// validatePhotoPath checks that the path points at a file the photo store
// actually holds, so a record never references a phantom upload.
func (s *RecordService) validatePhotoPath(p string) error {
	if !s.photos.Exists(p) {
		return fmt.Errorf("%w: photo_path does not reference an uploaded photo", domain.ErrValidation)
	}
	return nil
}

func validateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	return nil
}

func validateLongitude(lng float64) error {
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
