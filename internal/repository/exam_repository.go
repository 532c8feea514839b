package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examseat/seat-alloc-api/internal/models"
)

// ExamRepository manages persistence for exams and their registrations.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams matching the provided filters.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	base := "FROM exams e"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.exam_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.exam_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"exam_date":  "e.exam_date",
		"title":      "e.title",
		"created_at": "e.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "e.exam_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT e.id, e.title, e.exam_date, e.session, e.status, e.created_at, e.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// FindByID fetches an exam by ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, title, exam_date, session, status, created_at, updated_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts a new exam record.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	if exam.Status == "" {
		exam.Status = models.ExamStatusDraft
	}
	const query = `INSERT INTO exams (id, title, exam_date, session, status, created_at, updated_at)
        VALUES (:id, :title, :exam_date, :session, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// UpdateStatus transitions an exam's lifecycle status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE exams SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update exam status: %w", err)
	}
	return nil
}

// AddRegistrations bulk-inserts registrations, skipping students already
// registered for the exam.
func (r *ExamRepository) AddRegistrations(ctx context.Context, regs []models.ExamRegistration) (int, error) {
	if len(regs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add registrations: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO exam_registrations (id, exam_id, student_id, subject_code, created_at)
        VALUES (:id, :exam_id, :student_id, :subject_code, :created_at)
        ON CONFLICT (exam_id, student_id) DO NOTHING`
	inserted := 0
	now := time.Now().UTC()
	for i := range regs {
		if regs[i].ID == "" {
			regs[i].ID = uuid.NewString()
		}
		if regs[i].CreatedAt.IsZero() {
			regs[i].CreatedAt = now
		}
		res, err := tx.NamedExecContext(ctx, query, regs[i])
		if err != nil {
			return 0, fmt.Errorf("add registration for %s: %w", regs[i].StudentID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add registrations: %w", err)
	}
	return inserted, nil
}

// ListRegistrations returns the registrations of an exam joined with the
// student attributes the allocation engine needs, ordered by roll number.
func (r *ExamRepository) ListRegistrations(ctx context.Context, examID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT er.id, er.exam_id, er.student_id, er.subject_code, er.created_at,
        s.stu_no, s.full_name, s.year, s.dept, s.section
        FROM exam_registrations er
        JOIN students s ON s.id = er.student_id
        WHERE er.exam_id = $1
        ORDER BY s.stu_no`
	var regs []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &regs, query, examID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// CountRegistrations returns the registered headcount for an exam.
func (r *ExamRepository) CountRegistrations(ctx context.Context, examID string) (int, error) {
	const query = `SELECT COUNT(*) FROM exam_registrations WHERE exam_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, examID); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return total, nil
}

// RemoveRegistration deletes one student's registration from an exam.
func (r *ExamRepository) RemoveRegistration(ctx context.Context, examID, studentID string) error {
	const query = `DELETE FROM exam_registrations WHERE exam_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, examID, studentID); err != nil {
		return fmt.Errorf("remove registration: %w", err)
	}
	return nil
}
