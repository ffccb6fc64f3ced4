// Package handler implements the HTTP handlers for the Travel Record API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (record.go, photo.go, health.go) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/travelrecords/backend/internal/domain"
)

// RecordServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or the filesystem.
type RecordServicer interface {
	Create(ctx context.Context, rec domain.Record, baseURL string) (domain.RecordView, error)
	List(ctx context.Context, baseURL string) ([]domain.RecordView, error)
	GetByID(ctx context.Context, id uuid.UUID, baseURL string) (domain.RecordView, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.RecordUpdate, baseURL string) (domain.RecordView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachPhoto(r io.Reader, contentType, filename, baseURL string) (domain.PhotoUpload, error)
}

// PhotoOpener opens stored photo files for serving.
// Implemented by *photo.Store.
type PhotoOpener interface {
	Open(relativePath string) (io.ReadSeekCloser, time.Time, error)
}

// Server holds the dependencies shared by all HTTP handlers.
// publicBaseURL, when non-empty, overrides per-request base URL detection;
// leave it empty to derive the base URL from each request's scheme and host.
type Server struct {
	records       RecordServicer
	photos        PhotoOpener
	publicBaseURL string
}

// NewServer constructs the Server with all its dependencies.
func NewServer(records RecordServicer, photos PhotoOpener, publicBaseURL string) *Server {
	return &Server{
		records:       records,
		photos:        photos,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Routes returns the chi router for the full API surface.
// Both main.go and handler tests mount this, so tests exercise the exact
// production routing table.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/records", func(r chi.Router) {
		r.Post("/", s.CreateRecord)
		r.Get("/", s.ListRecords)
		r.Get("/{id}", s.GetRecord)
		r.Put("/{id}", s.UpdateRecord)
		r.Delete("/{id}", s.DeleteRecord)
	})

	r.Post("/upload-photo", s.UploadPhoto)
	r.Get("/uploads/photos/{filename}", s.GetPhoto)

	return r
}

// baseURL resolves the base URL used to build photo links in responses.
// A configured PUBLIC_BASE_URL wins; otherwise the request's own scheme and
// host are used, honoring X-Forwarded-Proto when set by a reverse proxy.
func (s *Server) baseURL(r *http.Request) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
