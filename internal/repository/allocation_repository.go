package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examseat/seat-alloc-api/internal/models"
)

// AllocationRepository manages persisted seat assignments.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Replace atomically swaps the seating chart of an exam: any previous run's
// rows are removed before the new assignment set is written, and the exam
// status moves to ALLOCATED in the same transaction.
func (r *AllocationRepository) Replace(ctx context.Context, examID string, allocations []models.SeatAllocation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace allocations: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_allocations WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("clear allocations: %w", err)
	}

	const query = `INSERT INTO seat_allocations (id, exam_id, student_id, classroom_id, bench_id, seat_no, created_at)
        VALUES (:id, :exam_id, :student_id, :classroom_id, :bench_id, :seat_no, :created_at)`
	now := time.Now().UTC()
	for i := range allocations {
		if allocations[i].ID == "" {
			allocations[i].ID = uuid.NewString()
		}
		allocations[i].ExamID = examID
		if allocations[i].CreatedAt.IsZero() {
			allocations[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, allocations[i]); err != nil {
			return fmt.Errorf("insert allocation for %s: %w", allocations[i].StudentID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE exams SET status = $2, updated_at = $3 WHERE id = $1`, examID, models.ExamStatusAllocated, now); err != nil {
		return fmt.Errorf("mark exam allocated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace allocations: %w", err)
	}
	return nil
}

// ListByExam returns the seating chart of an exam ordered for rendering:
// room, then column, row and seat.
func (r *AllocationRepository) ListByExam(ctx context.Context, examID string) ([]models.AllocationDetail, error) {
	const query = `SELECT a.id, a.exam_id, a.student_id, a.classroom_id, a.bench_id, a.seat_no, a.created_at,
        c.room_id, b.label AS bench_label, b.col_no, b.row_no,
        s.stu_no, s.full_name, er.subject_code, s.dept, s.section, s.year
        FROM seat_allocations a
        JOIN classrooms c ON c.id = a.classroom_id
        JOIN benches b ON b.id = a.bench_id
        JOIN students s ON s.id = a.student_id
        JOIN exam_registrations er ON er.exam_id = a.exam_id AND er.student_id = a.student_id
        WHERE a.exam_id = $1
        ORDER BY c.room_id, b.col_no, b.row_no, a.seat_no`
	var details []models.AllocationDetail
	if err := r.db.SelectContext(ctx, &details, query, examID); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return details, nil
}

// FindSeat returns the public lookup row for one student in one exam.
func (r *AllocationRepository) FindSeat(ctx context.Context, examID string, stuNo int) (*models.SeatLookup, error) {
	const query = `SELECT a.exam_id, e.title AS exam_title, s.stu_no, s.full_name,
        c.room_id, b.label AS bench_label, a.seat_no
        FROM seat_allocations a
        JOIN exams e ON e.id = a.exam_id
        JOIN students s ON s.id = a.student_id
        JOIN classrooms c ON c.id = a.classroom_id
        JOIN benches b ON b.id = a.bench_id
        WHERE a.exam_id = $1 AND s.stu_no = $2`
	var lookup models.SeatLookup
	if err := r.db.GetContext(ctx, &lookup, query, examID, stuNo); err != nil {
		return nil, err
	}
	return &lookup, nil
}

// CountByExam returns how many seats are assigned for an exam.
func (r *AllocationRepository) CountByExam(ctx context.Context, examID string) (int, error) {
	const query = `SELECT COUNT(*) FROM seat_allocations WHERE exam_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, examID); err != nil {
		return 0, fmt.Errorf("count allocations: %w", err)
	}
	return total, nil
}
