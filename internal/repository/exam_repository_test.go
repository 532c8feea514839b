package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examseat/seat-alloc-api/internal/models"
)

func newExamMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamRepositoryCreateDefaultsToDraft(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec("INSERT INTO exams").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	exam := &models.Exam{Title: "Midterm", ExamDate: time.Now(), Session: "MORNING"}
	err := repo.Create(context.Background(), exam)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusDraft, exam.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryAddRegistrationsSkipsDuplicates(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO exam_registrations").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO exam_registrations").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	regs := []models.ExamRegistration{
		{ExamID: "exam-1", StudentID: "s1", SubjectCode: "MATH"},
		{ExamID: "exam-1", StudentID: "s1", SubjectCode: "MATH"},
	}
	inserted, err := repo.AddRegistrations(context.Background(), regs)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListRegistrations(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "exam_id", "student_id", "subject_code", "created_at", "stu_no", "full_name", "year", "dept", "section"}).
		AddRow("r1", "exam-1", "s1", "MATH", time.Now(), 101, "Student", 3, "CSE", "A")
	mock.ExpectQuery("SELECT er.id, er.exam_id").
		WithArgs("exam-1").
		WillReturnRows(rows)

	regs, err := repo.ListRegistrations(context.Background(), "exam-1")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, 101, regs[0].StuNo)
	assert.Equal(t, "MATH", regs[0].SubjectCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryCountRegistrations(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.CountRegistrations(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
