// internal/service/file_service.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avoronov/miniogate/internal/domain"
	"github.com/avoronov/miniogate/internal/repository"
	"github.com/avoronov/miniogate/internal/storage"
)

const defaultContentType = "application/octet-stream"

// FileService orchestrates uploads, downloads and deletes across the object
// store and the metadata repository. It is stateless; every call runs to
// completion inside the request. The object-store write and the metadata
// write are two independent steps with no transaction spanning them.
type FileService struct {
	store storage.ObjectStorage
	repo  repository.FileRepository
}

func NewFileService(store storage.ObjectStorage, repo repository.FileRepository) *FileService {
	return &FileService{store: store, repo: repo}
}

// Upload stores a single file and records its metadata. When folderPath is
// non-empty the object key becomes "folderPath/name". Returns the object key.
func (s *FileService) Upload(ctx context.Context, payload *domain.FilePayload, folderPath string) (string, error) {
	if payload.IsEmpty() {
		return "", fmt.Errorf("%w: file must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.EnsureBucket(ctx); err != nil {
		return "", err
	}

	fileName := resolveFileName(payload.Name)
	objectPath := fileName
	if folderPath != "" {
		objectPath = folderPath + "/" + fileName
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	size := int64(len(payload.Data))
	if err := s.store.Put(ctx, objectPath, bytes.NewReader(payload.Data), size, contentType); err != nil {
		return "", err
	}

	// Metadata insert happens after the object write; a crash in between
	// leaves an orphan object with no row. Accepted inconsistency window.
	record := &domain.FileRecord{
		FileName:    objectPath,
		ContentType: payload.ContentType,
		Size:        size,
		FolderPath:  folderPath,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return "", err
	}

	return objectPath, nil
}

// UploadMultiple stores a batch of files under one shared folder, synthesizing
// a folder name when none is given. Items are processed sequentially in input
// order; a failing item is recorded and skipped, never rolled back. The call
// fails only when nothing succeeded.
func (s *FileService) UploadMultiple(ctx context.Context, payloads []*domain.FilePayload, folderName string) ([]string, error) {
	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: file list must not be empty", domain.ErrInvalidInput)
	}

	folderPath := folderName
	if folderPath == "" {
		folderPath = fmt.Sprintf("folder_%d", time.Now().UnixMilli())
	}

	uploaded := make([]string, 0, len(payloads))
	var errs []string

	for i, payload := range payloads {
		if payload.IsEmpty() {
			errs = append(errs, fmt.Sprintf("file %d is empty, skipped", i+1))
			continue
		}
		objectPath, err := s.Upload(ctx, payload, folderPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("file %d (%s) failed to upload: %v", i+1, payload.Name, err))
			continue
		}
		uploaded = append(uploaded, objectPath)
	}

	if len(uploaded) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAllFailed, strings.Join(errs, "; "))
	}

	if len(errs) > 0 {
		log.Warn().
			Str("folder", folderPath).
			Int("uploaded", len(uploaded)).
			Int("failed", len(errs)).
			Msg("some files failed to upload: " + strings.Join(errs, "; "))
	}

	return uploaded, nil
}

// Download reads the object stored under fileName fully into memory. The
// content type comes from the metadata row matching the name, defaulting to
// application/octet-stream when no row exists.
func (s *FileService) Download(ctx context.Context, fileName string) (*domain.FileDownload, error) {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	obj, err := s.store.Get(ctx, fileName)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", domain.ErrStoreUnavailable, fileName, err)
	}

	contentType := defaultContentType
	record, err := s.repo.FindByFileName(ctx, fileName)
	if err != nil {
		return nil, err
	}
	if record != nil && record.ContentType != "" {
		contentType = record.ContentType
	}

	return &domain.FileDownload{Data: data, ContentType: contentType}, nil
}

// DownloadMultiple bundles the named objects into a zip archive. Entry names
// collapse to the basename after the last "/". Any fetch failure aborts the
// whole bundle.
func (s *FileService) DownloadMultiple(ctx context.Context, fileNames []string) ([]byte, error) {
	if len(fileNames) == 0 {
		return nil, fmt.Errorf("%w: file name list must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return s.bundle(ctx, fileNames)
}

// DownloadByFolder bundles every file in the folder into a zip archive, with
// the same all-or-nothing fetch semantics as DownloadMultiple.
func (s *FileService) DownloadByFolder(ctx context.Context, folderPath string) ([]byte, error) {
	if folderPath == "" {
		return nil, fmt.Errorf("%w: folder path must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	records, err := s.repo.FindByFolderPath(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: folder %q is empty or missing", domain.ErrInvalidInput, folderPath)
	}

	fileNames := make([]string, 0, len(records))
	for _, record := range records {
		fileNames = append(fileNames, record.FileName)
	}

	return s.bundle(ctx, fileNames)
}

func (s *FileService) bundle(ctx context.Context, fileNames []string) ([]byte, error) {
	zb := newZipBuilder()
	for _, fileName := range fileNames {
		obj, err := s.store.Get(ctx, fileName)
		if err != nil {
			return nil, err
		}
		err = zb.Add(zipEntryName(fileName), obj)
		obj.Close()
		if err != nil {
			return nil, err
		}
	}
	return zb.Bytes()
}

// DeleteFileByID removes one object and its metadata row. The store delete
// runs first; when it fails the row is kept so metadata and store stay in
// sync on failure.
func (s *FileService) DeleteFileByID(ctx context.Context, id int64) error {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return err
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: no file with id %d", domain.ErrInvalidInput, id)
	}

	if err := s.store.Remove(ctx, record.FileName); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if record.FolderPath != "" {
		remaining, err := s.repo.FindByFolderPath(ctx, record.FolderPath)
		if err == nil && len(remaining) == 0 {
			// Informational only. An empty folder simply no longer exists.
			log.Info().Str("folder", record.FolderPath).Msg("folder is now empty, all files deleted")
		}
	}

	return nil
}

// DeleteFolderByPath removes every file in the folder. Each member is tried
// independently; failures are collected and the loop continues. When any
// member failed the call reports an aggregate error even though the other
// deletions already happened and stay deleted.
func (s *FileService) DeleteFolderByPath(ctx context.Context, folderPath string) error {
	if folderPath == "" {
		return fmt.Errorf("%w: folder path must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.EnsureBucket(ctx); err != nil {
		return err
	}

	records, err := s.repo.FindByFolderPath(ctx, folderPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: folder %q does not exist or is empty", domain.ErrInvalidInput, folderPath)
	}

	var errs []string
	for _, record := range records {
		if err := s.store.Remove(ctx, record.FileName); err != nil {
			errs = append(errs, fmt.Sprintf("delete of %q failed: %v", record.FileName, err))
			continue
		}
		if err := s.repo.DeleteByID(ctx, record.ID); err != nil {
			errs = append(errs, fmt.Sprintf("delete of %q failed: %v", record.FileName, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrPartialDelete, strings.Join(errs, "; "))
	}

	return nil
}

// DeleteFolderByFileID resolves the record for id and deletes the whole
// folder that file belongs to.
func (s *FileService) DeleteFolderByFileID(ctx context.Context, id int64) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: no file with id %d", domain.ErrInvalidInput, id)
	}
	if record.FolderPath == "" {
		return fmt.Errorf("%w: file %d does not belong to any folder", domain.ErrInvalidInput, id)
	}

	return s.DeleteFolderByPath(ctx, record.FolderPath)
}

// resolveFileName keeps the original name verbatim and synthesizes one for
// blank uploads. No sanitization happens here: names are used as-is as keys.
func resolveFileName(name string) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("unnamed_file_%d", time.Now().UnixMilli())
	}
	return name
}

// zipEntryName collapses a folder-prefixed key to its last path segment.
func zipEntryName(fileName string) string {
	if idx := strings.LastIndex(fileName, "/"); idx >= 0 {
		return fileName[idx+1:]
	}
	return fileName
}
