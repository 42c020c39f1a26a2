package server

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
)

// saveUpload persists one multipart file into the upload directory under a
// fresh name. The returned cleanup removes it; extraction never needs the
// file after the handler returns.
func (s *Server) saveUpload(c *gin.Context, field string) (string, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%w: missing file field %q", common.ErrInvalidInput, field)
	}
	return s.saveFileHeader(c, file)
}

func (s *Server) saveFileHeader(c *gin.Context, file *multipart.FileHeader) (string, func(), error) {
	ext := constants.NormalizeExt(filepath.Ext(file.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "", nil, &common.UnsupportedFormatError{Ext: ext}
	}
	if maxBytes := s.cfg.Upload.MaxSizeMB << 20; file.Size > maxBytes {
		return "", nil, fmt.Errorf("%w: file exceeds %dMB limit", common.ErrInvalidInput, s.cfg.Upload.MaxSizeMB)
	}

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.Upload.Dir, uuid.NewString()+"."+ext)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", nil, fmt.Errorf("save upload: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("upload.cleanup_failed", "path", path, "error", err)
		}
	}
	return path, cleanup, nil
}
