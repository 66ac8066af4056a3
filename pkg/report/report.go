// Package report writes an import summary as an XLSX workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/awesmubarak/koboanki/pkg/importer"
)

// Sheet names in the workbook, in order.
const (
	SheetSummary = "Summary"
	SheetAdded   = "Added"
	SheetSkipped = "Skipped"
	SheetIgnored = "Ignored"
	SheetFailed  = "Failed"
)

// WriteXLSX saves s to path.
func WriteXLSX(path string, s *importer.Summary) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook for s to w.
func Write(w io.Writer, s *importer.Summary) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

func build(s *importer.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	status := "complete"
	if s.Aborted {
		status = "aborted"
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Status", status},
		{"Found", s.Candidates},
		{"Added", len(s.Added)},
		{"Skipped", len(s.Skipped)},
		{"Ignored", len(s.Ignored)},
		{"Failed", len(s.Failed)},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		f.Close()
		return nil, err
	}

	for _, sheet := range []struct {
		name  string
		words []string
	}{
		{SheetAdded, s.Added},
		{SheetSkipped, s.Skipped},
		{SheetIgnored, s.Ignored},
	} {
		rows := [][]any{{"Word"}}
		for _, w := range sheet.words {
			rows = append(rows, []any{w})
		}
		if err := addSheet(f, sheet.name, rows); err != nil {
			f.Close()
			return nil, err
		}
	}

	failed := [][]any{{"Word", "Language", "Reason"}}
	for _, fw := range s.Failed {
		failed = append(failed, []any{fw.Word, fw.Language, fw.Reason})
	}
	if err := addSheet(f, SheetFailed, failed); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("report: sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
