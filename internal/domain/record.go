// Package domain contains the core data types for the Travel Record API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler, photo).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record represents a single travel record: a named location with coordinates,
// an optional description, and an optional photo stored on disk.
//
// PhotoPath is the root-relative storage path of the associated photo
// (e.g. "photos/3f2a….png"), empty when the record has no photo. The browsable
// URL is never stored — it is derived at response time (see RecordView) so the
// public base URL can change without a data migration.
type Record struct {
	ID           uuid.UUID
	LocationName string
	Latitude     float64
	Longitude    float64
	Description  string
	PhotoPath    string
	CreatedAt    time.Time
}

// RecordUpdate carries a partial update. A nil field means "leave unchanged";
// only non-nil fields are applied. This gives explicit omitted-vs-provided
// semantics: an update payload of {"description":"x"} touches nothing else.
type RecordUpdate struct {
	LocationName *string
	Latitude     *float64
	Longitude    *float64
	Description  *string
	PhotoPath    *string
}

// RecordView is the outward-facing projection of a Record. PhotoURL is
// computed from the request base URL when PhotoPath is set, empty otherwise.
type RecordView struct {
	Record
	PhotoURL string
}

// PhotoUpload is the result of a successful photo upload: the relative path
// to persist on a record, plus the immediately browsable URL.
type PhotoUpload struct {
	PhotoPath string
	PhotoURL  string
}
