package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
)

type mockClassroomRepo struct {
	classrooms map[string]models.Classroom
	benches    map[string][]models.Bench
	roomIDs    map[string]bool
	listTotal  int
}

func (m *mockClassroomRepo) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	out := make([]models.Classroom, 0, len(m.classrooms))
	for _, c := range m.classrooms {
		out = append(out, c)
	}
	return out, m.listTotal, nil
}

func (m *mockClassroomRepo) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassroomRepo) ExistsByRoomID(ctx context.Context, roomID string) (bool, error) {
	return m.roomIDs[roomID], nil
}

func (m *mockClassroomRepo) Create(ctx context.Context, classroom *models.Classroom, benches []models.Bench) error {
	if m.classrooms == nil {
		m.classrooms = make(map[string]models.Classroom)
	}
	if m.benches == nil {
		m.benches = make(map[string][]models.Bench)
	}
	if classroom.ID == "" {
		classroom.ID = "generated"
	}
	m.classrooms[classroom.ID] = *classroom
	m.benches[classroom.ID] = benches
	return nil
}

func (m *mockClassroomRepo) Update(ctx context.Context, classroom *models.Classroom) error {
	m.classrooms[classroom.ID] = *classroom
	return nil
}

func (m *mockClassroomRepo) ListBenches(ctx context.Context, classroomID string) ([]models.Bench, error) {
	return m.benches[classroomID], nil
}

func TestClassroomServiceCreateMaterializesGrid(t *testing.T) {
	repo := &mockClassroomRepo{roomIDs: make(map[string]bool)}
	svc := NewClassroomService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Create(context.Background(), dto.CreateClassroomRequest{
		RoomID:        "R-101",
		Columns:       3,
		Rows:          2,
		SeatsPerBench: 2,
	})
	require.NoError(t, err)
	require.Len(t, detail.Benches, 6)
	assert.Equal(t, "C1R1", detail.Benches[0].Label)
	assert.Equal(t, "C1R2", detail.Benches[1].Label)
	assert.Equal(t, "C3R2", detail.Benches[5].Label)
	assert.Equal(t, 3, detail.Benches[5].ColNo)
	assert.Equal(t, 2, detail.Benches[5].RowNo)
}

func TestClassroomServiceCreateDuplicateRoomID(t *testing.T) {
	repo := &mockClassroomRepo{roomIDs: map[string]bool{"R-101": true}}
	svc := NewClassroomService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateClassroomRequest{RoomID: "R-101", Columns: 1, Rows: 1, SeatsPerBench: 2})
	require.Error(t, err)
}

func TestClassroomServiceUpdateKeepsGrid(t *testing.T) {
	repo := &mockClassroomRepo{classrooms: map[string]models.Classroom{
		"c1": {ID: "c1", RoomID: "R-101", Columns: 2, Rows: 2, SeatsPerBench: 2, Active: true},
	}}
	svc := NewClassroomService(repo, validator.New(), zap.NewNop())

	inactive := false
	updated, err := svc.Update(context.Background(), "c1", dto.UpdateClassroomRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, 2, updated.Columns)
}

func TestClassroomServiceGetNotFound(t *testing.T) {
	repo := &mockClassroomRepo{}
	svc := NewClassroomService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
}
