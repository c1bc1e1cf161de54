package complaints

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/campus-buddy/backend/internal/storage/models"
)

const (
	ExportBaseName = "campus_buddy_complaints"
	exportSheet    = "Complaints"
)

var exportColumns = []string{
	"id", "type", "category", "subcategory", "description", "is_anonymous",
	"file_path", "email", "status", "assigned_to", "created_at",
}

func exportRow(c models.Complaint) []string {
	anon := "0"
	if c.IsAnonymous {
		anon = "1"
	}
	return []string{
		strconv.FormatInt(c.ID, 10),
		string(c.Type),
		c.Category,
		c.Subcategory,
		c.Description,
		anon,
		c.FilePath,
		c.Email,
		string(c.Status),
		c.AssignedTo,
		c.CreatedAt,
	}
}

// ExportCSV writes every complaint, newest first, with a header row.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	list, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range list {
		if err := cw.Write(exportRow(c)); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}

	return len(list), nil
}

// ExportXLSX writes the same table as ExportCSV as a spreadsheet.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) (int, error) {
	list, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	setRow := func(row int, values []string) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := setRow(1, exportColumns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	for i, c := range list {
		if err := setRow(i+2, exportRow(c)); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return len(list), nil
}
