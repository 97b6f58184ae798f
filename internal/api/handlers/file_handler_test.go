package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/miniogate/internal/api"
	"github.com/avoronov/miniogate/internal/domain"
)

// stubService records calls and plays back canned results.
type stubService struct {
	uploadPath   string
	uploadErr    error
	uploadFolder string

	batchPaths  []string
	batchErr    error
	batchCount  int
	batchFolder string

	download    *domain.FileDownload
	downloadErr error

	zipBytes []byte
	zipErr   error

	deleteErr error
	deletedID int64
}

func (s *stubService) Upload(ctx context.Context, payload *domain.FilePayload, folderPath string) (string, error) {
	s.uploadFolder = folderPath
	return s.uploadPath, s.uploadErr
}

func (s *stubService) UploadMultiple(ctx context.Context, payloads []*domain.FilePayload, folderName string) ([]string, error) {
	s.batchCount = len(payloads)
	s.batchFolder = folderName
	return s.batchPaths, s.batchErr
}

func (s *stubService) Download(ctx context.Context, fileName string) (*domain.FileDownload, error) {
	return s.download, s.downloadErr
}

func (s *stubService) DownloadMultiple(ctx context.Context, fileNames []string) ([]byte, error) {
	return s.zipBytes, s.zipErr
}

func (s *stubService) DownloadByFolder(ctx context.Context, folderPath string) ([]byte, error) {
	return s.zipBytes, s.zipErr
}

func (s *stubService) DeleteFileByID(ctx context.Context, id int64) error {
	s.deletedID = id
	return s.deleteErr
}

func (s *stubService) DeleteFolderByPath(ctx context.Context, folderPath string) error {
	return s.deleteErr
}

func (s *stubService) DeleteFolderByFileID(ctx context.Context, id int64) error {
	s.deletedID = id
	return s.deleteErr
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return api.NewRouter(svc, nil)
}

func multipartBody(t *testing.T, field string, files map[string]string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for key, value := range extra {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestCORSOrigins(t *testing.T) {
	t.Run("wildcard config admits any origin", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := api.NewRouter(&stubService{}, []string{"*"})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://files.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://files.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("configured origin list is honored", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := api.NewRouter(&stubService{}, []string{"https://app.example.com"})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin is rejected", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := api.NewRouter(&stubService{}, []string{"https://app.example.com"})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUploadHandler(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPost, "/files/upload", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("successful upload returns the stored path", func(t *testing.T) {
		svc := &stubService{uploadPath: "docs/a.txt"}
		router := newTestRouter(svc)

		body, contentType := multipartBody(t, "file", map[string]string{"a.txt": "hello"}, map[string]string{"folder": "docs"})
		req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "docs/a.txt")
		assert.Equal(t, "docs", svc.uploadFolder)
	})

	t.Run("invalid input maps to 400", func(t *testing.T) {
		svc := &stubService{uploadErr: fmt.Errorf("%w: file must not be empty", domain.ErrInvalidInput)}
		router := newTestRouter(svc)

		body, contentType := multipartBody(t, "file", map[string]string{"a.txt": "x"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("backend failure maps to 500", func(t *testing.T) {
		svc := &stubService{uploadErr: fmt.Errorf("%w: put failed", domain.ErrStoreWrite)}
		router := newTestRouter(svc)

		body, contentType := multipartBody(t, "file", map[string]string{"a.txt": "x"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestUploadBatchHandler(t *testing.T) {
	t.Run("no files field", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		body, contentType := multipartBody(t, "files", nil, map[string]string{"folder": "docs"})
		req := httptest.NewRequest(http.MethodPost, "/files/upload/batch", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only empty files", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		body, contentType := multipartBody(t, "files", map[string]string{"a.txt": ""}, nil)
		req := httptest.NewRequest(http.MethodPost, "/files/upload/batch", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns the ordered list of stored paths", func(t *testing.T) {
		svc := &stubService{batchPaths: []string{"docs/a.txt", "docs/b.txt"}}
		router := newTestRouter(svc)

		body, contentType := multipartBody(t, "files", map[string]string{"a.txt": "a", "b.txt": "b"}, map[string]string{"folder": "docs"})
		req := httptest.NewRequest(http.MethodPost, "/files/upload/batch", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var paths []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paths))
		assert.Equal(t, []string{"docs/a.txt", "docs/b.txt"}, paths)
		assert.Equal(t, 2, svc.batchCount)
		assert.Equal(t, "docs", svc.batchFolder)
	})

	t.Run("all failed maps to 400", func(t *testing.T) {
		svc := &stubService{batchErr: fmt.Errorf("%w: file 1 is empty", domain.ErrAllFailed)}
		router := newTestRouter(svc)

		body, contentType := multipartBody(t, "files", map[string]string{"a.txt": "x"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/files/upload/batch", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDownloadHandler(t *testing.T) {
	t.Run("sets attachment headers from metadata", func(t *testing.T) {
		svc := &stubService{download: &domain.FileDownload{Data: []byte("hello"), ContentType: "text/plain"}}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/files/download/a.txt", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello", rec.Body.String())
		assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="a.txt"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("missing object maps to 500", func(t *testing.T) {
		svc := &stubService{downloadErr: fmt.Errorf("%w: %q", domain.ErrObjectNotFound, "a.txt")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/files/download/a.txt", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestDownloadBatchHandler(t *testing.T) {
	t.Run("body must be a JSON array", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPost, "/files/download/batch", bytes.NewBufferString(`{"not":"array"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty list is rejected", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPost, "/files/download/batch", bytes.NewBufferString(`[]`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns a zip attachment", func(t *testing.T) {
		svc := &stubService{zipBytes: []byte("PK\x03\x04zip")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/files/download/batch", bytes.NewBufferString(`["a.txt","b.txt"]`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="files.zip"`, rec.Header().Get("Content-Disposition"))
	})
}

func TestDownloadFolderHandler(t *testing.T) {
	t.Run("names the archive after the folder", func(t *testing.T) {
		svc := &stubService{zipBytes: []byte("PK\x03\x04zip")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/files/download/folder/docs", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="docs.zip"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("empty folder maps to 400", func(t *testing.T) {
		svc := &stubService{zipErr: fmt.Errorf("%w: folder %q is empty or missing", domain.ErrInvalidInput, "docs")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/files/download/folder/docs", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteHandlers(t *testing.T) {
	t.Run("non-numeric id", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := httptest.NewRequest(http.MethodDelete, "/files/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete by id confirms in plain text", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/files/7", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "7")
		assert.Equal(t, int64(7), svc.deletedID)
	})

	t.Run("delete folder by path", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := httptest.NewRequest(http.MethodDelete, "/files/folder/docs", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "docs")
	})

	t.Run("delete folder by file id", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/files/folder/by-file-id/3", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), svc.deletedID)
	})

	t.Run("partial folder delete maps to 500", func(t *testing.T) {
		svc := &stubService{deleteErr: fmt.Errorf("%w: delete of %q failed", domain.ErrPartialDelete, "docs/b.txt")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/files/folder/docs", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
