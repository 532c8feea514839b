package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
	"github.com/examseat/seat-alloc-api/pkg/export"
	"github.com/examseat/seat-alloc-api/pkg/jobs"
	"github.com/examseat/seat-alloc-api/pkg/storage"
)

type chartSource interface {
	ListByExam(ctx context.Context, examID string) ([]models.AllocationDetail, error)
}

type examSource interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	JobTTL    time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// exportJobStore holds job records in memory. Seating-chart exports are
// short-lived artifacts, so job metadata expires with the signed URL instead
// of being persisted.
type exportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

func newExportJobStore() *exportJobStore {
	return &exportJobStore{jobs: make(map[string]*models.ExportJob)}
}

func (s *exportJobStore) put(job *models.ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *exportJobStore) get(id string) (*models.ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	clone := *job
	return &clone, true
}

func (s *exportJobStore) update(id string, fn func(*models.ExportJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

func (s *exportJobStore) expireBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// ExportService renders seating charts to CSV or PDF in the background and
// exposes them through signed download URLs.
type ExportService struct {
	charts  chartSource
	exams   examSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   jobDispatcher
	store   *exportJobStore
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(charts chartSource, exams examSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = cfg.ResultTTL
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		charts:  charts,
		exams:   exams,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		store:   newExportJobStore(),
	}
}

// SetQueue attaches the dispatcher. Separate from construction because the
// queue handler needs the service.
func (s *ExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob validates the request, records the job, and enqueues rendering.
func (s *ExportService) CreateJob(ctx context.Context, examID string, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	if exam.Status != models.ExamStatusAllocated {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam has no seating chart yet")
	}
	if req.Format != models.ExportFormatCSV && req.Format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		ExamID:    examID,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	s.store.put(job)

	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "seating_chart_export"}); err != nil {
		s.failJob(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ExportService) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, ok := s.store.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return &dto.ExportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// Process is the queue handler: it renders the chart and publishes the
// signed download URL.
func (s *ExportService) Process(ctx context.Context, queued jobs.Job) error {
	job, ok := s.store.get(queued.ID)
	if !ok {
		s.logger.Warn("export job vanished before processing", zap.String("job_id", queued.ID))
		return nil
	}
	s.store.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusProcessing
	})

	details, err := s.charts.ListByExam(ctx, job.ExamID)
	if err != nil {
		s.failJob(job.ID, "failed to load seating chart")
		return err
	}
	exam, err := s.exams.FindByID(ctx, job.ExamID)
	if err != nil {
		s.failJob(job.ID, "failed to load exam")
		return err
	}

	dataset := buildChartDataset(details)
	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Seating Chart: %s", exam.Title))
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		s.failJob(job.ID, "failed to render export")
		return err
	}

	filename := s.buildFilename(job, exam)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(job.ID, "failed to store export")
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(job.ID, "failed to sign download url")
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	now := time.Now().UTC()
	s.store.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFinished
		j.ResultURL = &url
		j.FinishedAt = &now
	})
	s.logger.Info("export finished",
		zap.String("job_id", job.ID),
		zap.String("exam_id", job.ExamID),
		zap.String("format", string(job.Format)))
	return nil
}

// ResolveDownload validates a download token and opens the stored file.
func (s *ExportService) ResolveDownload(token string) (*ExportDownload, error) {
	_, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return &ExportDownload{File: file, Filename: relPath, ExpiresAt: expiresAt}, nil
}

// Cleanup removes expired artifacts and job records.
func (s *ExportService) Cleanup() {
	removedFiles, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	}
	removedJobs := s.store.expireBefore(time.Now().UTC().Add(-s.cfg.JobTTL))
	if len(removedFiles) > 0 || removedJobs > 0 {
		s.logger.Info("export cleanup finished",
			zap.Int("files_removed", len(removedFiles)),
			zap.Int("jobs_removed", removedJobs))
	}
}

// StartCleanupLoop runs Cleanup on the given interval until ctx is done.
func (s *ExportService) StartCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

func (s *ExportService) failJob(id, message string) {
	now := time.Now().UTC()
	s.store.update(id, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.ErrorMessage = &message
		j.FinishedAt = &now
	})
}

func (s *ExportService) buildFilename(job *models.ExportJob, exam *models.Exam) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	title := sanitizeFilename(exam.Title)
	return fmt.Sprintf("seating_%s_%s.%s", title, timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

var chartHeaders = []string{"Room", "Bench", "Seat", "Roll No", "Name", "Subject", "Dept", "Section", "Year"}

func buildChartDataset(details []models.AllocationDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, map[string]string{
			"Room":    d.RoomID,
			"Bench":   d.BenchLabel,
			"Seat":    fmt.Sprintf("%d", d.SeatNo),
			"Roll No": fmt.Sprintf("%d", d.StuNo),
			"Name":    d.FullName,
			"Subject": d.SubjectCode,
			"Dept":    d.Dept,
			"Section": d.Section,
			"Year":    fmt.Sprintf("%d", d.Year),
		})
	}
	return export.Dataset{Headers: chartHeaders, Rows: rows, GroupBy: "Room"}
}
