// Package repo contains all database access logic for the Travel Record API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/travelrecords/backend/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepo defines the persistence operations for travel records.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type RecordRepo interface {
	// Insert persists a new record. The caller assigns ID and CreatedAt.
	// Returns domain.ErrDuplicateID if a record with that ID already exists.
	Insert(ctx context.Context, rec domain.Record) (domain.Record, error)

	// List returns all records ordered by created_at descending.
	List(ctx context.Context) ([]domain.Record, error)

	// GetByID retrieves a single record by its UUID primary key.
	// Returns domain.ErrNotFound if no record with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Record, error)

	// Update applies only the non-nil fields of upd to the record and returns
	// the updated row. Fields not present in upd are left untouched.
	// Returns domain.ErrNotFound if no record with that ID exists.
	Update(ctx context.Context, id uuid.UUID, upd domain.RecordUpdate) (domain.Record, error)

	// Delete removes a record by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgRecordRepo is the Postgres implementation of RecordRepo.
type pgRecordRepo struct {
	db db
}

// NewRecordRepo constructs a RecordRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRecordRepo(db db) RecordRepo {
	return &pgRecordRepo{db: db}
}

// Insert persists a new record row and returns the full persisted record.
func (r *pgRecordRepo) Insert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	const q = `
		INSERT INTO records (id, location_name, latitude, longitude, description, photo_path, created_at)
		VALUES (@id, @location_name, @latitude, @longitude, @description, @photo_path, @created_at)
		RETURNING id, location_name, latitude, longitude, description, photo_path, created_at`

	args := pgx.NamedArgs{
		"id":            rec.ID,
		"location_name": rec.LocationName,
		"latitude":      rec.Latitude,
		"longitude":     rec.Longitude,
		"description":   rec.Description,
		"photo_path":    rec.PhotoPath,
		"created_at":    rec.CreatedAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Record{}, fmt.Errorf("repo.RecordRepo.Insert: %w", domain.ErrDuplicateID)
		}
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Insert: %w", err)
	}
	return result, nil
}

// List returns all records ordered by created_at descending (newest first).
// The underlying store does not guarantee insertion order, so the ordering is
// imposed here.
func (r *pgRecordRepo) List(ctx context.Context) ([]domain.Record, error) {
	const q = `
		SELECT id, location_name, latitude, longitude, description, photo_path, created_at
		FROM records
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.List: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.List: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.List: rows: %w", err)
	}

	return records, nil
}

// GetByID retrieves a record by primary key.
func (r *pgRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Record, error) {
	const q = `
		SELECT id, location_name, latitude, longitude, description, photo_path, created_at
		FROM records
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.GetByID: %w", err)
	}
	return result, nil
}

// Update applies the non-nil fields of upd in a single UPDATE statement.
// COALESCE(@field, column) keeps the stored value when the argument is NULL,
// which is exactly the "omitted means unchanged" contract of RecordUpdate.
// A single statement also means the read-modify-write is atomic per row.
func (r *pgRecordRepo) Update(ctx context.Context, id uuid.UUID, upd domain.RecordUpdate) (domain.Record, error) {
	const q = `
		UPDATE records
		SET location_name = COALESCE(@location_name, location_name),
		    latitude      = COALESCE(@latitude, latitude),
		    longitude     = COALESCE(@longitude, longitude),
		    description   = COALESCE(@description, description),
		    photo_path    = COALESCE(@photo_path, photo_path)
		WHERE id = @id
		RETURNING id, location_name, latitude, longitude, description, photo_path, created_at`

	args := pgx.NamedArgs{
		"id":            id,
		"location_name": upd.LocationName, // nil pointers become NULL
		"latitude":      upd.Latitude,
		"longitude":     upd.Longitude,
		"description":   upd.Description,
		"photo_path":    upd.PhotoPath,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a record by primary key.
func (r *pgRecordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM records WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanRecord to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single database row into a domain.Record.
func scanRecord(s scanner) (domain.Record, error) {
	var (
		rec domain.Record
		id  pgtype.UUID
	)

	err := s.Scan(&id, &rec.LocationName, &rec.Latitude, &rec.Longitude,
		&rec.Description, &rec.PhotoPath, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, domain.ErrNotFound
		}
		return domain.Record{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	return rec, nil
}
