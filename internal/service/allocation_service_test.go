package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/allocator"
	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
)

type mockExamRepo struct {
	exam          *models.Exam
	registrations []models.RegistrationDetail
	registered    int
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	if m.exam == nil {
		return nil, 0, nil
	}
	return []models.Exam{*m.exam}, 1, nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if m.exam == nil || m.exam.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.exam, nil
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	m.exam = exam
	return nil
}

func (m *mockExamRepo) AddRegistrations(ctx context.Context, regs []models.ExamRegistration) (int, error) {
	m.registered += len(regs)
	return len(regs), nil
}

func (m *mockExamRepo) ListRegistrations(ctx context.Context, examID string) ([]models.RegistrationDetail, error) {
	return m.registrations, nil
}

func (m *mockExamRepo) CountRegistrations(ctx context.Context, examID string) (int, error) {
	return len(m.registrations), nil
}

func (m *mockExamRepo) RemoveRegistration(ctx context.Context, examID, studentID string) error {
	return nil
}

type mockLayoutRepo struct {
	classrooms map[string]models.Classroom
	benches    map[string][]models.Bench
}

func (m *mockLayoutRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Classroom, error) {
	out := make([]models.Classroom, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.classrooms[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockLayoutRepo) ListBenchesByClassrooms(ctx context.Context, ids []string) (map[string][]models.Bench, error) {
	out := make(map[string][]models.Bench)
	for _, id := range ids {
		out[id] = m.benches[id]
	}
	return out, nil
}

type mockAllocationRepo struct {
	replaced map[string][]models.SeatAllocation
	seat     *models.SeatLookup
}

func (m *mockAllocationRepo) Replace(ctx context.Context, examID string, allocations []models.SeatAllocation) error {
	if m.replaced == nil {
		m.replaced = make(map[string][]models.SeatAllocation)
	}
	m.replaced[examID] = allocations
	return nil
}

func (m *mockAllocationRepo) ListByExam(ctx context.Context, examID string) ([]models.AllocationDetail, error) {
	return nil, nil
}

func (m *mockAllocationRepo) FindSeat(ctx context.Context, examID string, stuNo int) (*models.SeatLookup, error) {
	if m.seat == nil {
		return nil, sql.ErrNoRows
	}
	return m.seat, nil
}

type mockLookupCache struct {
	values   map[string]models.SeatLookup
	invalids []string
	hits     int
	misses   int
}

func (m *mockLookupCache) Get(ctx context.Context, key string, dest interface{}) error {
	if v, ok := m.values[key]; ok {
		m.hits++
		if out, ok := dest.(*models.SeatLookup); ok {
			*out = v
		}
		return nil
	}
	m.misses++
	return appErrors.ErrCacheMiss
}

func (m *mockLookupCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]models.SeatLookup)
	}
	if v, ok := value.(*models.SeatLookup); ok {
		m.values[key] = *v
	}
	return nil
}

func (m *mockLookupCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalids = append(m.invalids, pattern)
	m.values = nil
	return nil
}

func allocationFixture() (*mockExamRepo, *mockLayoutRepo, *mockAllocationRepo) {
	exams := &mockExamRepo{
		exam: &models.Exam{ID: "exam-1", Title: "Midterm", Status: models.ExamStatusDraft},
		registrations: []models.RegistrationDetail{
			{ExamRegistration: models.ExamRegistration{StudentID: "s1", SubjectCode: "MATH"}, StuNo: 1, FullName: "A", Year: 3, Dept: "CSE", Section: "A"},
			{ExamRegistration: models.ExamRegistration{StudentID: "s2", SubjectCode: "MATH"}, StuNo: 2, FullName: "B", Year: 3, Dept: "CSE", Section: "A"},
			{ExamRegistration: models.ExamRegistration{StudentID: "s3", SubjectCode: "PHY"}, StuNo: 3, FullName: "C", Year: 3, Dept: "EEE", Section: "B"},
		},
	}
	layouts := &mockLayoutRepo{
		classrooms: map[string]models.Classroom{
			"c1": {ID: "c1", RoomID: "R-101", SeatsPerBench: 2, Active: true},
		},
		benches: map[string][]models.Bench{
			"c1": {
				{ID: "b1", ClassroomID: "c1", Label: "C1R1", ColNo: 1, RowNo: 1},
				{ID: "b2", ClassroomID: "c1", Label: "C2R1", ColNo: 2, RowNo: 1},
			},
		},
	}
	return exams, layouts, &mockAllocationRepo{}
}

func newAllocationService(exams *mockExamRepo, layouts *mockLayoutRepo, allocations *mockAllocationRepo, cache *mockLookupCache) *AllocationService {
	var c lookupCache
	if cache != nil {
		c = cache
	}
	return NewAllocationService(exams, layouts, allocations, c, nil, allocator.Options{}, time.Minute, validator.New(), zap.NewNop())
}

func TestAllocationServiceAllocatePersistsChart(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	cache := &mockLookupCache{}
	svc := newAllocationService(exams, layouts, allocations, cache)

	seed := int64(7)
	res, err := svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalSlots)
	assert.Equal(t, 3, res.Placed)
	assert.Empty(t, res.Waiting)
	require.Len(t, allocations.replaced["exam-1"], 3)
	for _, a := range allocations.replaced["exam-1"] {
		assert.Equal(t, "c1", a.ClassroomID)
		assert.Contains(t, []string{"b1", "b2"}, a.BenchID)
	}
	assert.Contains(t, cache.invalids, "seat_lookup:exam-1:*")
}

func TestAllocationServiceAllocateReturnsPlan(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	svc := newAllocationService(exams, layouts, allocations, nil)

	seed := int64(7)
	res, err := svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}, Seed: &seed})
	require.NoError(t, err)

	require.Len(t, res.Assignments, 3)
	seated := make(map[string]dto.AllocatedSeat, len(res.Assignments))
	for _, seat := range res.Assignments {
		assert.Equal(t, "R-101", seat.RoomID)
		assert.Contains(t, []string{"C1R1", "C2R1"}, seat.BenchLabel)
		assert.Contains(t, []int{1, 2}, seat.SeatNo)
		seated[seat.StudentID] = seat
	}
	require.Len(t, seated, 3)
	assert.Equal(t, 1, seated["s1"].StuNo)
	assert.Equal(t, "MATH", seated["s1"].SubjectCode)
	assert.Equal(t, "C", seated["s3"].FullName)
}

func TestAllocationServiceAllocateDeterministicSeed(t *testing.T) {
	seed := int64(42)

	exams1, layouts1, allocations1 := allocationFixture()
	svc1 := newAllocationService(exams1, layouts1, allocations1, nil)
	first, err := svc1.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}, Seed: &seed})
	require.NoError(t, err)

	exams2, layouts2, allocations2 := allocationFixture()
	svc2 := newAllocationService(exams2, layouts2, allocations2, nil)
	second, err := svc2.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, allocations1.replaced["exam-1"], allocations2.replaced["exam-1"])
}

func TestAllocationServiceAllocateRequiresForceOnRerun(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	exams.exam.Status = models.ExamStatusAllocated
	svc := newAllocationService(exams, layouts, allocations, nil)

	_, err := svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}, Force: true})
	require.NoError(t, err)
}

func TestAllocationServiceAllocateUnknownClassroom(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	svc := newAllocationService(exams, layouts, allocations, nil)

	_, err := svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"missing"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAllocationServiceAllocateInactiveClassroom(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	room := layouts.classrooms["c1"]
	room.Active = false
	layouts.classrooms["c1"] = room
	svc := newAllocationService(exams, layouts, allocations, nil)

	_, err := svc.Allocate(context.Background(), "exam-1", dto.AllocateRequest{ClassroomIDs: []string{"c1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAllocationServiceLookupCachesResult(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	allocations.seat = &models.SeatLookup{ExamID: "exam-1", StuNo: 1, FullName: "A", RoomID: "R-101", BenchLabel: "C1R1", SeatNo: 1}
	cache := &mockLookupCache{}
	svc := newAllocationService(exams, layouts, allocations, cache)

	query := dto.SeatLookupQuery{ExamID: "exam-1", StuNo: 1}
	first, err := svc.Lookup(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "C1R1", first.BenchLabel)
	assert.Equal(t, 1, cache.misses)

	second, err := svc.Lookup(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
}

func TestAllocationServiceLookupNotFound(t *testing.T) {
	exams, layouts, allocations := allocationFixture()
	svc := newAllocationService(exams, layouts, allocations, nil)

	_, err := svc.Lookup(context.Background(), dto.SeatLookupQuery{ExamID: "exam-1", StuNo: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
