package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examseat/seat-alloc-api/internal/models"
)

func newAllocationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAllocationRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newAllocationMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_allocations").
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO seat_allocations").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("UPDATE exams SET status").
		WithArgs("exam-1", models.ExamStatusAllocated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	allocations := []models.SeatAllocation{
		{StudentID: "s1", ClassroomID: "c1", BenchID: "b1", SeatNo: 1},
		{StudentID: "s2", ClassroomID: "c1", BenchID: "b1", SeatNo: 2},
	}
	err := repo.Replace(context.Background(), "exam-1", allocations)
	require.NoError(t, err)
	for _, a := range allocations {
		assert.Equal(t, "exam-1", a.ExamID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newAllocationMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_allocations").
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO seat_allocations").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), "exam-1", []models.SeatAllocation{{StudentID: "s1", ClassroomID: "c1", BenchID: "b1", SeatNo: 1}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryListByExam(t *testing.T) {
	db, mock, cleanup := newAllocationMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "exam_id", "student_id", "classroom_id", "bench_id", "seat_no", "created_at",
		"room_id", "bench_label", "col_no", "row_no",
		"stu_no", "full_name", "subject_code", "dept", "section", "year",
	}).AddRow("a1", "exam-1", "s1", "c1", "b1", 1, time.Now(), "R-101", "C1R1", 1, 1, 101, "Student", "MATH", "CSE", "A", 3)
	mock.ExpectQuery("SELECT a.id, a.exam_id").
		WithArgs("exam-1").
		WillReturnRows(rows)

	details, err := repo.ListByExam(context.Background(), "exam-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "R-101", details[0].RoomID)
	assert.Equal(t, "MATH", details[0].SubjectCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryFindSeatNotFound(t *testing.T) {
	db, mock, cleanup := newAllocationMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectQuery("SELECT a.exam_id, e.title").
		WithArgs("exam-1", 999).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindSeat(context.Background(), "exam-1", 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
