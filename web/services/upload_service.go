package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"query-chat/backend"
	apperrors "query-chat/errors"

	"go.uber.org/zap"
)

const (
	MaxUploadSize = 50 * 1024 * 1024 // 50MB per file
)

// UploadService turns browser multipart uploads into backend files.
type UploadService struct {
	logger *zap.Logger
}

func NewUploadService(logger *zap.Logger) *UploadService {
	return &UploadService{logger: logger}
}

// OpenedFiles are uploads ready to forward. Close releases every handle.
type OpenedFiles struct {
	Files   []backend.File
	closers []io.Closer
}

func (o *OpenedFiles) Close() {
	for _, c := range o.closers {
		c.Close()
	}
}

// ValidateFile checks the size and returns the name to forward. Browsers may
// send a full client path; only the base name is kept, since the backend
// derives the dataset identifier from it.
func (us *UploadService) ValidateFile(file *multipart.FileHeader) (string, error) {
	name := filepath.Base(strings.ReplaceAll(file.Filename, `\`, "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "invalid or unsafe filename")
	}
	if file.Size > MaxUploadSize {
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%s is too large, maximum size is 50MB", name)
	}
	return name, nil
}

// OpenFiles validates and opens every uploaded file, in selection order.
func (us *UploadService) OpenFiles(headers []*multipart.FileHeader) (*OpenedFiles, error) {
	opened := &OpenedFiles{}
	for _, fh := range headers {
		name, err := us.ValidateFile(fh)
		if err != nil {
			opened.Close()
			return nil, err
		}

		src, err := fh.Open()
		if err != nil {
			opened.Close()
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		opened.closers = append(opened.closers, src)
		opened.Files = append(opened.Files, backend.File{Name: name, Content: src})
	}

	if len(opened.Files) > 0 {
		us.logger.Debug("Forwarding uploaded files",
			zap.String("first_file", opened.Files[0].Name),
			zap.Int("count", len(opened.Files)))
	}
	return opened, nil
}
