// internal/domain/models.go
package domain

import "time"

// FileRecord represents the metadata row kept for one stored object.
// FileName holds the full object-store key, folder prefix included.
// FolderPath is empty for files uploaded outside any folder; a folder
// is nothing more than the set of records sharing a FolderPath.
type FileRecord struct {
	ID          int64     `json:"id" db:"id"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadTime  time.Time `json:"upload_time" db:"upload_time"`
	FolderPath  string    `json:"folder_path" db:"folder_path"`
}

// FilePayload is one uploaded file, fully buffered in memory.
type FilePayload struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsEmpty reports whether the payload carries no bytes.
func (p *FilePayload) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}

// FileDownload is the result of a single-file download.
type FileDownload struct {
	Data        []byte
	ContentType string
}
