package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func runWithResults(t *testing.T) (*fakeRunRepository, string) {
	t.Helper()
	ctx := context.Background()
	runs := newFakeRunRepository()

	run := &models.TestRun{TestID: 1, LecturerID: "lect-1", Active: true, LaunchedAt: time.Now()}
	require.NoError(t, runs.Launch(ctx, run))

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, runs.AppendResult(ctx, run.ID, &models.RunResult{
		UserID: "u2", Username: "bob", RightAnswers: 1, TasksNum: 4,
		StartedAt: base, SubmittedAt: base.Add(20 * time.Minute), ElapsedSeconds: 1200, Duration: 30,
	}))
	require.NoError(t, runs.AppendResult(ctx, run.ID, &models.RunResult{
		UserID: "u1", Username: "alice", RightAnswers: 3, TasksNum: 4,
		StartedAt: base, SubmittedAt: base.Add(10 * time.Minute), ElapsedSeconds: 600, Duration: 30,
	}))
	return runs, run.ID
}

func TestExportService_ExportRunResults(t *testing.T) {
	ctx := context.Background()
	runs, runID := runWithResults(t)
	svc := NewExportService(runs, discardLogger())

	data, err := svc.ExportRunResults(ctx, "lect-1", runID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, resultHeaders, rows[0])
	// earliest submission first
	assert.Equal(t, "alice", rows[1][1])
	assert.Equal(t, "75.0", rows[1][6])
	assert.Equal(t, "10", rows[1][7])
	assert.Equal(t, "bob", rows[2][1])
}

func TestExportService_ExportRunResultsCSV(t *testing.T) {
	ctx := context.Background()
	runs, runID := runWithResults(t)
	svc := NewExportService(runs, discardLogger())

	data, err := svc.ExportRunResultsCSV(ctx, "lect-1", runID)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "u1", records[1][0])
	assert.Equal(t, "no", records[1][8])
}

func TestExportService_Permissions(t *testing.T) {
	ctx := context.Background()
	runs, runID := runWithResults(t)
	svc := NewExportService(runs, discardLogger())

	_, err := svc.ExportRunResults(ctx, "lect-2", runID)
	assert.True(t, IsUnauthorized(err))

	_, err = svc.ExportRunResults(ctx, "lect-1", "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
