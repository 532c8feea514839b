package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/allocator"
	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
)

type allocationRepository interface {
	Replace(ctx context.Context, examID string, allocations []models.SeatAllocation) error
	ListByExam(ctx context.Context, examID string) ([]models.AllocationDetail, error)
	FindSeat(ctx context.Context, examID string, stuNo int) (*models.SeatLookup, error)
}

type lookupCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type allocationMetrics interface {
	ObserveAllocationRun(duration time.Duration, violations, waiting int)
	RecordCacheOperation(hit bool, duration time.Duration)
}

// AllocationService orchestrates seat allocation runs: it loads the room
// layouts and registrations, invokes the engine and persists the resulting
// chart atomically.
type AllocationService struct {
	exams       examRepository
	classrooms  examClassroomRepository
	allocations allocationRepository
	cache       lookupCache
	metrics     allocationMetrics
	engineOpts  allocator.Options
	lookupTTL   time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAllocationService constructs the allocation service.
func NewAllocationService(
	exams examRepository,
	classrooms examClassroomRepository,
	allocations allocationRepository,
	cache lookupCache,
	metrics allocationMetrics,
	engineOpts allocator.Options,
	lookupTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookupTTL <= 0 {
		lookupTTL = 10 * time.Minute
	}
	return &AllocationService{
		exams:       exams,
		classrooms:  classrooms,
		allocations: allocations,
		cache:       cache,
		metrics:     metrics,
		engineOpts:  engineOpts,
		lookupTTL:   lookupTTL,
		validator:   validate,
		logger:      logger,
	}
}

// Allocate runs the engine for an exam and replaces its seating chart. An
// exam that already has a chart is only re-run when Force is set.
func (s *AllocationService) Allocate(ctx context.Context, examID string, req dto.AllocateRequest) (*dto.AllocateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if exam.Status == models.ExamStatusAllocated && !req.Force {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exam already allocated; set force to re-run")
	}

	rooms, err := s.loadRoomLayouts(ctx, req.ClassroomIDs)
	if err != nil {
		return nil, err
	}

	regDetails, err := s.exams.ListRegistrations(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	regs := make([]allocator.Registration, 0, len(regDetails))
	for _, detail := range regDetails {
		regs = append(regs, allocator.Registration{
			StudentID: detail.StudentID,
			StuNo:     detail.StuNo,
			FullName:  detail.FullName,
			Subject:   detail.SubjectCode,
			Dept:      detail.Dept,
			Section:   detail.Section,
			Year:      detail.Year,
		})
	}

	opts := s.engineOpts
	if req.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*req.Seed))
	}
	engine := allocator.New(opts)

	started := time.Now()
	result := engine.Run(rooms, regs)
	elapsed := time.Since(started)

	allocations := make([]models.SeatAllocation, 0, len(result.Assignments))
	for _, assignment := range result.Assignments {
		allocations = append(allocations, models.SeatAllocation{
			ExamID:      examID,
			StudentID:   assignment.Student.StudentID,
			ClassroomID: assignment.Slot.ClassroomID,
			BenchID:     assignment.Slot.BenchID,
			SeatNo:      assignment.Slot.SeatNo,
		})
	}
	if err := s.allocations.Replace(ctx, examID, allocations); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist allocations")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, lookupKeyPattern(examID)); err != nil {
			s.logger.Warn("failed to invalidate seat lookup cache", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveAllocationRun(elapsed, result.Report.Total(), len(result.Waiting))
	}

	s.logger.Info("allocation run finished",
		zap.String("exam_id", examID),
		zap.Int("total_slots", result.TotalSlots),
		zap.Int("placed", result.Placed),
		zap.Int("waiting", len(result.Waiting)),
		zap.Int("violations", result.Report.Total()),
		zap.Duration("elapsed", elapsed))

	return buildAllocateResponse(examID, result), nil
}

// Allocations returns the persisted seating chart of an exam.
func (s *AllocationService) Allocations(ctx context.Context, examID string) (*dto.AllocationListResponse, error) {
	if _, err := s.exams.FindByID(ctx, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	details, err := s.allocations.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}
	return &dto.AllocationListResponse{ExamID: examID, Allocations: details}, nil
}

// Lookup resolves one student's seat, serving repeat lookups from cache.
func (s *AllocationService) Lookup(ctx context.Context, query dto.SeatLookupQuery) (*models.SeatLookup, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lookup query")
	}

	key := lookupKey(query.ExamID, query.StuNo)
	if s.cache != nil {
		started := time.Now()
		var cached models.SeatLookup
		err := s.cache.Get(ctx, key, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil, time.Since(started))
		}
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("seat lookup cache read failed", zap.Error(err))
		}
	}

	lookup, err := s.allocations.FindSeat(ctx, query.ExamID, query.StuNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no seat assigned for this roll number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up seat")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, lookup, s.lookupTTL); err != nil {
			s.logger.Warn("seat lookup cache write failed", zap.Error(err))
		}
	}
	return lookup, nil
}

// loadRoomLayouts resolves classrooms and their benches into engine room
// layouts, preserving the caller's classroom order.
func (s *AllocationService) loadRoomLayouts(ctx context.Context, classroomIDs []string) ([]allocator.RoomLayout, error) {
	classrooms, err := s.classrooms.FindByIDs(ctx, classroomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	byID := make(map[string]models.Classroom, len(classrooms))
	for _, classroom := range classrooms {
		byID[classroom.ID] = classroom
	}
	benches, err := s.classrooms.ListBenchesByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load benches")
	}

	rooms := make([]allocator.RoomLayout, 0, len(classroomIDs))
	for _, id := range classroomIDs {
		classroom, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("classroom %s not found", id))
		}
		if !classroom.Active {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("classroom %s is inactive", classroom.RoomID))
		}
		positions := make([]allocator.BenchPosition, 0, len(benches[id]))
		for _, bench := range benches[id] {
			positions = append(positions, allocator.BenchPosition{
				BenchID: bench.ID,
				Label:   bench.Label,
				Column:  bench.ColNo,
				Row:     bench.RowNo,
			})
		}
		rooms = append(rooms, allocator.RoomLayout{
			ClassroomID:   classroom.ID,
			RoomID:        classroom.RoomID,
			SeatsPerBench: classroom.SeatsPerBench,
			Benches:       positions,
		})
	}
	return rooms, nil
}

func buildAllocateResponse(examID string, result allocator.Result) *dto.AllocateResponse {
	assignments := make([]dto.AllocatedSeat, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		assignments = append(assignments, dto.AllocatedSeat{
			StudentID:   a.Student.StudentID,
			StuNo:       a.Student.StuNo,
			FullName:    a.Student.FullName,
			SubjectCode: a.Student.Subject,
			RoomID:      a.Slot.RoomID,
			BenchLabel:  a.Slot.BenchLabel,
			SeatNo:      a.Slot.SeatNo,
		})
	}
	waiting := make([]dto.WaitingStudent, 0, len(result.Waiting))
	for _, w := range result.Waiting {
		waiting = append(waiting, dto.WaitingStudent{
			StudentID:   w.StudentID,
			StuNo:       w.StuNo,
			FullName:    w.FullName,
			SubjectCode: w.Subject,
		})
	}
	return &dto.AllocateResponse{
		ExamID:      examID,
		TotalSlots:  result.TotalSlots,
		Placed:      result.Placed,
		Assignments: assignments,
		Waiting:     waiting,
		Report: dto.ViolationReport{
			SameSubjectSameBench: result.Report.SameSubjectSameBench,
			SameDeptSameBench:    result.Report.SameDeptSameBench,
			SameSubjectAdjacent:  result.Report.SameSubjectAdjacent,
			SameDeptAdjacent:     result.Report.SameDeptAdjacent,
			SameSectionAdjacent:  result.Report.SameSectionAdjacent,
			SameYearAdjacent:     result.Report.SameYearAdjacent,
			Total:                result.Report.Total(),
		},
		SwapTrials:    result.SwapTrials,
		SwapsAccepted: result.SwapsAccepted,
	}
}

func lookupKey(examID string, stuNo int) string {
	return fmt.Sprintf("seat_lookup:%s:%d", examID, stuNo)
}

func lookupKeyPattern(examID string) string {
	return fmt.Sprintf("seat_lookup:%s:*", examID)
}
