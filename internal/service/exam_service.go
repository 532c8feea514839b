package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	AddRegistrations(ctx context.Context, regs []models.ExamRegistration) (int, error)
	ListRegistrations(ctx context.Context, examID string) ([]models.RegistrationDetail, error)
	CountRegistrations(ctx context.Context, examID string) (int, error)
	RemoveRegistration(ctx context.Context, examID, studentID string) error
}

type examClassroomRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Classroom, error)
	ListBenchesByClassrooms(ctx context.Context, classroomIDs []string) (map[string][]models.Bench, error)
}

// ExamService handles exam and registration use-cases.
type ExamService struct {
	repo       examRepository
	classrooms examClassroomRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, classrooms examClassroomRepository, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, classrooms: classrooms, validator: validate, logger: logger}
}

// List returns exams and pagination metadata.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return exams, pagination, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create registers a new exam sitting.
func (s *ExamService) Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam date")
	}
	exam := &models.Exam{
		Title:    req.Title,
		ExamDate: examDate,
		Session:  req.Session,
		Status:   models.ExamStatusDraft,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// Register bulk-adds registrations for an exam, skipping students already
// registered.
func (s *ExamService) Register(ctx context.Context, examID string, req dto.RegisterStudentsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if _, err := s.Get(ctx, examID); err != nil {
		return 0, err
	}
	regs := make([]models.ExamRegistration, 0, len(req.Registrations))
	for _, entry := range req.Registrations {
		regs = append(regs, models.ExamRegistration{
			ExamID:      examID,
			StudentID:   entry.StudentID,
			SubjectCode: entry.SubjectCode,
		})
	}
	inserted, err := s.repo.AddRegistrations(ctx, regs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add registrations")
	}
	s.logger.Info("registrations added",
		zap.String("exam_id", examID),
		zap.Int("requested", len(regs)),
		zap.Int("inserted", inserted))
	return inserted, nil
}

// Registrations lists the registrations of an exam.
func (s *ExamService) Registrations(ctx context.Context, examID string) ([]models.RegistrationDetail, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	regs, err := s.repo.ListRegistrations(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, nil
}

// Unregister removes one student's registration from an exam.
func (s *ExamService) Unregister(ctx context.Context, examID, studentID string) error {
	if _, err := s.Get(ctx, examID); err != nil {
		return err
	}
	if err := s.repo.RemoveRegistration(ctx, examID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove registration")
	}
	return nil
}

// CheckCapacity compares the registered headcount against the seat count of
// the selected classrooms.
func (s *ExamService) CheckCapacity(ctx context.Context, examID string, classroomIDs []string) (*models.CapacityCheck, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	registered, err := s.repo.CountRegistrations(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	classrooms, err := s.classrooms.FindByIDs(ctx, classroomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	if len(classrooms) != len(classroomIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more classrooms not found")
	}
	benches, err := s.classrooms.ListBenchesByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load benches")
	}
	seats := 0
	benchSize := 0
	for _, classroom := range classrooms {
		seats += len(benches[classroom.ID]) * classroom.SeatsPerBench
		if classroom.SeatsPerBench > benchSize {
			benchSize = classroom.SeatsPerBench
		}
	}
	check := &models.CapacityCheck{
		Registered: registered,
		Seats:      seats,
		Fits:       seats >= registered,
	}
	if !check.Fits {
		check.Shortfall = registered - seats
		if benchSize > 0 {
			check.BenchesNeeded = (check.Shortfall + benchSize - 1) / benchSize
		}
	}
	return check, nil
}
