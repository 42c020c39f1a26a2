package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExportDonors streams the donor roster as an XLSX workbook, optionally
// filtered to one blood group.
func (s *Server) handleExportDonors(c *gin.Context) {
	filter := ""
	if raw := c.Query("bloodGroup"); raw != "" {
		bg, ok := constants.CanonicalizeBloodGroup(raw)
		if !ok {
			s.respondError(c, fmt.Errorf("%w: invalid blood group %q", common.ErrInvalidInput, raw))
			return
		}
		filter = string(bg)
	}

	data, err := s.exporter.ExportDonorsXLSX(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("donors-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
