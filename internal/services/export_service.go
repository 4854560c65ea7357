package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	timeLayout   = "2006-01-02 15:04:05"
)

var resultHeaders = []string{
	"Student ID", "Student Name", "Started At", "Submitted At",
	"Right Answers", "Tasks", "Score (%)", "Time Spent (minutes)", "Late", "Abandoned",
}

// ExportService renders the results of a run for download by its lecturer
type ExportService interface {
	ExportRunResults(ctx context.Context, lecturerID, runID string) ([]byte, error)
	ExportRunResultsCSV(ctx context.Context, lecturerID, runID string) ([]byte, error)
}

type exportService struct {
	runs   repositories.RunRepository
	logger *slog.Logger
}

func NewExportService(runs repositories.RunRepository, logger *slog.Logger) ExportService {
	return &exportService{
		runs:   runs,
		logger: logger,
	}
}

func (s *exportService) ownedRun(ctx context.Context, lecturerID, runID string) (*models.TestRun, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run.LecturerID != lecturerID {
		return nil, NewPermissionError(lecturerID, runID, "test_run", "export_results", "run was launched by another lecturer")
	}
	run.SortResults()
	return run, nil
}

func resultRow(r *models.RunResult) []interface{} {
	return []interface{}{
		r.UserID,
		r.Username,
		r.StartedAt.Format(timeLayout),
		r.SubmittedAt.Format(timeLayout),
		r.RightAnswers,
		r.TasksNum,
		strconv.FormatFloat(r.Score()*100, 'f', 1, 64),
		r.ElapsedSeconds / 60,
		yesNo(r.Late),
		yesNo(r.Forced),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (s *exportService) ExportRunResults(ctx context.Context, lecturerID, runID string) ([]byte, error) {
	run, err := s.ownedRun(ctx, lecturerID, runID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel style: %w", err)
	}

	for i, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultsSheet, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(resultHeaders), 1)
	f.SetCellStyle(resultsSheet, "A1", last, bold)

	for rowIndex := range run.Results {
		for colIndex, value := range resultRow(&run.Results[rowIndex]) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Run results exported",
		"run_id", runID,
		"format", "xlsx",
		"rows", len(run.Results))
	return buf.Bytes(), nil
}

func (s *exportService) ExportRunResultsCSV(ctx context.Context, lecturerID, runID string) ([]byte, error) {
	run, err := s.ownedRun(ctx, lecturerID, runID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range run.Results {
		row := resultRow(&run.Results[i])
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.InfoContext(ctx, "Run results exported",
		"run_id", runID,
		"format", "csv",
		"rows", len(run.Results))
	return buf.Bytes(), nil
}
