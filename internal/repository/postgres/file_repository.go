// internal/repository/postgres/file_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/miniogate/internal/domain"
)

type fileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *fileRepository {
	return &fileRepository{db: db}
}

// Save inserts a new metadata row and fills in the generated id. UploadTime
// defaults to now when unset; it is never changed afterwards. Writes go
// through WithTx so the connection semaphore bounds them.
func (r *fileRepository) Save(ctx context.Context, record *domain.FileRecord) error {
	if record.UploadTime.IsZero() {
		record.UploadTime = time.Now()
	}

	query := `
		INSERT INTO file_metadata (file_name, content_type, size, upload_time, folder_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(
			ctx,
			query,
			record.FileName,
			nullIfEmpty(record.ContentType),
			record.Size,
			record.UploadTime,
			nullIfEmpty(record.FolderPath),
		).Scan(&record.ID)
		if err != nil {
			return fmt.Errorf("failed to insert file metadata: %w", err)
		}
		return nil
	})
}

// FindByID returns the record with the given id, or nil when none exists.
func (r *fileRepository) FindByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	query := selectColumns + ` WHERE id = $1`

	var record domain.FileRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query file metadata by id: %w", err)
	}
	return &record, nil
}

// FindByFileName returns the newest record stored under fileName, or nil.
// Re-uploads of the same name create duplicate rows; the newest one matches
// the bytes actually present in the object store.
func (r *fileRepository) FindByFileName(ctx context.Context, fileName string) (*domain.FileRecord, error) {
	query := selectColumns + ` WHERE file_name = $1 ORDER BY id DESC LIMIT 1`

	var record domain.FileRecord
	if err := r.db.GetContext(ctx, &record, query, fileName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query file metadata by name: %w", err)
	}
	return &record, nil
}

// FindByFolderPath returns every record in the folder, ordered by id so
// multi-member operations walk the members deterministically.
func (r *fileRepository) FindByFolderPath(ctx context.Context, folderPath string) ([]*domain.FileRecord, error) {
	query := selectColumns + ` WHERE folder_path = $1 ORDER BY id`

	records := make([]*domain.FileRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, folderPath); err != nil {
		return nil, fmt.Errorf("failed to query file metadata by folder: %w", err)
	}
	return records, nil
}

func (r *fileRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM file_metadata WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete file metadata: %w", err)
		}
		return nil
	})
}

const selectColumns = `
	SELECT
		id,
		file_name,
		COALESCE(content_type, '') AS content_type,
		COALESCE(size, 0) AS size,
		upload_time,
		COALESCE(folder_path, '') AS folder_path
	FROM file_metadata
`

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
