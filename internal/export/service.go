package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"bloodbridge/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for
// exports. Blood banks and camp organizers still live in spreadsheets.
type Service struct {
	donors repository.DonorRepository
	logger *slog.Logger
}

func NewService(donors repository.DonorRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{donors: donors, logger: logger}
}

// ExportDonorsXLSX returns an XLSX workbook (as bytes) with one row per
// donor. When bloodGroup is non-empty only that group is included.
func (s *Service) ExportDonorsXLSX(ctx context.Context, bloodGroup string) ([]byte, error) {
	start := time.Now()

	donors, err := s.donors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query donors: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Donors"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Name",
		"Blood Group",
		"Age",
		"Gender",
		"Phone",
		"Latitude",
		"Longitude",
		"Verified",
		"Active",
		"Registered",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	exported := 0
	for _, d := range donors {
		if bloodGroup != "" && d.BloodGroup != bloodGroup {
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, d.Name)
		write(2, d.BloodGroup)
		if d.Age != nil {
			write(3, *d.Age)
		} else {
			write(3, "")
		}
		write(4, d.Gender)
		write(5, d.Phone)
		write(6, d.Latitude)
		write(7, d.Longitude)
		write(8, d.Verified)
		write(9, d.Active)
		write(10, d.CreatedAt.UTC().Format("2006-01-02"))

		row++
		exported++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // name
	_ = f.SetColWidth(sheet, "B", "B", 12) // group
	_ = f.SetColWidth(sheet, "E", "E", 16) // phone
	_ = f.SetColWidth(sheet, "F", "G", 12) // coordinates
	_ = f.SetColWidth(sheet, "J", "J", 14) // date

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", exported,
		"blood_group_filter", bloodGroup,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
