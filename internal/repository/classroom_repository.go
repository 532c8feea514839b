package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examseat/seat-alloc-api/internal/models"
)

// ClassroomRepository manages persistence for classrooms and their benches.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// List returns classrooms matching the provided filters.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	base := "FROM classrooms c"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Building != "" {
		conditions = append(conditions, fmt.Sprintf("c.building = $%d", len(args)+1))
		args = append(args, filter.Building)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"room_id":    "c.room_id",
		"building":   "c.building",
		"created_at": "c.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "c.room_id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.room_id, c.building, c.columns, c.rows, c.seats_per_bench, c.active, c.created_at, c.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classrooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classrooms: %w", err)
	}
	return classrooms, total, nil
}

// FindByID fetches a classroom by ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT id, room_id, building, columns, rows, seats_per_bench, active, created_at, updated_at FROM classrooms WHERE id = $1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// FindByIDs fetches multiple classrooms preserving no particular order.
func (r *ClassroomRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Classroom, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, room_id, building, columns, rows, seats_per_bench, active, created_at, updated_at FROM classrooms WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build classroom query: %w", err)
	}
	query = r.db.Rebind(query)
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, fmt.Errorf("find classrooms: %w", err)
	}
	return classrooms, nil
}

// ExistsByRoomID checks if a classroom with the given room code exists.
func (r *ClassroomRepository) ExistsByRoomID(ctx context.Context, roomID string) (bool, error) {
	const query = "SELECT 1 FROM classrooms WHERE room_id = $1 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, roomID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room_id: %w", err)
	}
	return true, nil
}

// Create inserts a classroom together with its materialized benches in a
// single transaction.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom, benches []models.Bench) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = now
	}
	classroom.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create classroom: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const roomQuery = `INSERT INTO classrooms (id, room_id, building, columns, rows, seats_per_bench, active, created_at, updated_at)
        VALUES (:id, :room_id, :building, :columns, :rows, :seats_per_bench, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, roomQuery, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}

	const benchQuery = `INSERT INTO benches (id, classroom_id, label, col_no, row_no, created_at)
        VALUES (:id, :classroom_id, :label, :col_no, :row_no, :created_at)`
	for i := range benches {
		if benches[i].ID == "" {
			benches[i].ID = uuid.NewString()
		}
		benches[i].ClassroomID = classroom.ID
		if benches[i].CreatedAt.IsZero() {
			benches[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, benchQuery, benches[i]); err != nil {
			return fmt.Errorf("create bench %s: %w", benches[i].Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create classroom: %w", err)
	}
	return nil
}

// Update modifies classroom metadata.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	classroom.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET building = :building, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// ListBenches returns the benches of a classroom ordered by column then row.
func (r *ClassroomRepository) ListBenches(ctx context.Context, classroomID string) ([]models.Bench, error) {
	const query = `SELECT id, classroom_id, label, col_no, row_no, created_at FROM benches WHERE classroom_id = $1 ORDER BY col_no, row_no`
	var benches []models.Bench
	if err := r.db.SelectContext(ctx, &benches, query, classroomID); err != nil {
		return nil, fmt.Errorf("list benches: %w", err)
	}
	return benches, nil
}

// ListBenchesByClassrooms returns benches for a classroom set keyed by
// classroom ID.
func (r *ClassroomRepository) ListBenchesByClassrooms(ctx context.Context, classroomIDs []string) (map[string][]models.Bench, error) {
	if len(classroomIDs) == 0 {
		return map[string][]models.Bench{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, classroom_id, label, col_no, row_no, created_at FROM benches WHERE classroom_id IN (?) ORDER BY classroom_id, col_no, row_no`, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("build bench query: %w", err)
	}
	query = r.db.Rebind(query)
	var benches []models.Bench
	if err := r.db.SelectContext(ctx, &benches, query, args...); err != nil {
		return nil, fmt.Errorf("list benches: %w", err)
	}
	grouped := make(map[string][]models.Bench, len(classroomIDs))
	for _, bench := range benches {
		grouped[bench.ClassroomID] = append(grouped[bench.ClassroomID], bench)
	}
	return grouped, nil
}
