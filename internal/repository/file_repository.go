// internal/repository/file_repository.go
package repository

import (
	"context"

	"github.com/avoronov/miniogate/internal/domain"
)

type FileRepository interface {
	Save(ctx context.Context, record *domain.FileRecord) error
	FindByID(ctx context.Context, id int64) (*domain.FileRecord, error)
	FindByFileName(ctx context.Context, fileName string) (*domain.FileRecord, error)
	FindByFolderPath(ctx context.Context, folderPath string) ([]*domain.FileRecord, error)
	DeleteByID(ctx context.Context, id int64) error
}
