package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ExistsByRoomID(ctx context.Context, roomID string) (bool, error)
	Create(ctx context.Context, classroom *models.Classroom, benches []models.Bench) error
	Update(ctx context.Context, classroom *models.Classroom) error
	ListBenches(ctx context.Context, classroomID string) ([]models.Bench, error)
}

// ClassroomService handles exam-room use-cases.
type ClassroomService struct {
	repo      classroomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs the classroom service.
func NewClassroomService(repo classroomRepository, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, validator: validate, logger: logger}
}

// List returns classrooms and pagination metadata.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
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
	return classrooms, pagination, nil
}

// Get returns one classroom with its bench layout.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	benches, err := s.repo.ListBenches(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load benches")
	}
	return &models.ClassroomDetail{Classroom: *classroom, Benches: benches}, nil
}

// Create registers a classroom and materializes its bench grid.
func (s *ClassroomService) Create(ctx context.Context, req dto.CreateClassroomRequest) (*models.ClassroomDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	exists, err := s.repo.ExistsByRoomID(ctx, req.RoomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate room code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room code already used")
	}

	classroom := &models.Classroom{
		RoomID:        req.RoomID,
		Building:      req.Building,
		Columns:       req.Columns,
		Rows:          req.Rows,
		SeatsPerBench: req.SeatsPerBench,
		Active:        true,
	}
	benches := materializeBenches(req.Columns, req.Rows)
	if err := s.repo.Create(ctx, classroom, benches); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	s.logger.Info("classroom created",
		zap.String("room_id", classroom.RoomID),
		zap.Int("benches", len(benches)))
	return &models.ClassroomDetail{Classroom: *classroom, Benches: benches}, nil
}

// Update modifies classroom metadata. The bench grid is immutable.
func (s *ClassroomService) Update(ctx context.Context, id string, req dto.UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if req.Building != nil {
		classroom.Building = *req.Building
	}
	if req.Active != nil {
		classroom.Active = *req.Active
	}
	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	return classroom, nil
}

// materializeBenches builds the column-major bench grid with C{col}R{row}
// labels.
func materializeBenches(columns, rows int) []models.Bench {
	benches := make([]models.Bench, 0, columns*rows)
	for col := 1; col <= columns; col++ {
		for row := 1; row <= rows; row++ {
			benches = append(benches, models.Bench{
				Label: fmt.Sprintf("C%dR%d", col, row),
				ColNo: col,
				RowNo: row,
			})
		}
	}
	return benches
}
