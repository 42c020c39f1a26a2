package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodbridge/internal/common"
)

// respondError maps pipeline errors onto HTTP statuses. Extraction and
// validation failures are client problems (bad scans), not server faults.
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		unsupported *common.UnsupportedFormatError
		ocrErr      *common.OCRError
		extractErr  *common.ExtractionFailedError
		validation  *common.ValidationError
	)

	switch {
	case errors.As(err, &unsupported):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": unsupported.Error()})
	case errors.As(err, &extractErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  extractErr.Error(),
			"sample": extractErr.Sample,
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  validation.Error(),
			"issues": validation.Issues,
		})
	case errors.As(err, &ocrErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ocrErr.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("http.internal_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
