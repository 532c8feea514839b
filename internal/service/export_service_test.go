package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	"github.com/examseat/seat-alloc-api/pkg/export"
	"github.com/examseat/seat-alloc-api/pkg/jobs"
	"github.com/examseat/seat-alloc-api/pkg/storage"
)

type chartStub struct {
	details []models.AllocationDetail
}

func (c chartStub) ListByExam(ctx context.Context, examID string) ([]models.AllocationDetail, error) {
	return c.details, nil
}

type examStub struct {
	exam *models.Exam
}

func (e examStub) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if e.exam == nil || e.exam.ID != id {
		return nil, io.EOF
	}
	return e.exam, nil
}

type syncDispatcher struct {
	svc  *ExportService
	jobs []jobs.Job
}

func (d *syncDispatcher) Enqueue(job jobs.Job) error {
	d.jobs = append(d.jobs, job)
	return d.svc.Process(context.Background(), job)
}

func chartFixture() []models.AllocationDetail {
	return []models.AllocationDetail{
		{
			SeatAllocation: models.SeatAllocation{ID: "a1", ExamID: "exam-1", StudentID: "s1", SeatNo: 1},
			RoomID:         "R-101", BenchLabel: "C1R1", ColNo: 1, RowNo: 1,
			StuNo: 101, FullName: "Alice", SubjectCode: "MATH", Dept: "CSE", Section: "A", Year: 3,
		},
		{
			SeatAllocation: models.SeatAllocation{ID: "a2", ExamID: "exam-1", StudentID: "s2", SeatNo: 2},
			RoomID:         "R-101", BenchLabel: "C1R1", ColNo: 1, RowNo: 1,
			StuNo: 102, FullName: "Bob", SubjectCode: "PHY", Dept: "EEE", Section: "B", Year: 3,
		},
	}
}

func newExportServiceForTest(t *testing.T) (*ExportService, *syncDispatcher) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	exam := &models.Exam{ID: "exam-1", Title: "Midterm", Status: models.ExamStatusAllocated}
	svc := NewExportService(chartStub{details: chartFixture()}, examStub{exam: exam}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	dispatcher := &syncDispatcher{svc: svc}
	svc.SetQueue(dispatcher)
	return svc, dispatcher
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	res, err := svc.CreateJob(context.Background(), "exam-1", dto.ExportRequest{Format: models.ExportFormatCSV}, "admin")
	require.NoError(t, err)

	status, err := svc.GetStatus(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)
	assert.Contains(t, *status.ResultURL, "/api/v1/exports/download/")

	token := strings.TrimPrefix(*status.ResultURL, "/api/v1/exports/download/")
	download, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	body := string(content)
	assert.Contains(t, body, "Room")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "C1R1")
}

func TestExportServicePDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	res, err := svc.CreateJob(context.Background(), "exam-1", dto.ExportRequest{Format: models.ExportFormatPDF}, "admin")
	require.NoError(t, err)

	status, err := svc.GetStatus(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
}

func TestExportServiceRejectsUnallocatedExam(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	exam := &models.Exam{ID: "exam-1", Title: "Midterm", Status: models.ExamStatusDraft}
	svc := NewExportService(chartStub{}, examStub{exam: exam}, store, signer, ExportConfig{}, zap.NewNop(), nil, nil)
	svc.SetQueue(&syncDispatcher{svc: svc})

	_, err = svc.CreateJob(context.Background(), "exam-1", dto.ExportRequest{Format: models.ExportFormatCSV}, "admin")
	require.Error(t, err)
}

func TestExportServiceStatusUnknownJob(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
}

func TestExportServiceResolveDownloadBadToken(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.ResolveDownload("not-a-token")
	require.Error(t, err)
}
