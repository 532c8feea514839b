package models

import "time"

// SeatAllocation is one persisted seat assignment for an exam run.
type SeatAllocation struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	BenchID     string    `db:"bench_id" json:"bench_id"`
	SeatNo      int       `db:"seat_no" json:"seat_no"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AllocationDetail joins the assignment with everything a seating chart
// needs to render a row.
type AllocationDetail struct {
	SeatAllocation
	RoomID      string `db:"room_id" json:"room_id"`
	BenchLabel  string `db:"bench_label" json:"bench_label"`
	ColNo       int    `db:"col_no" json:"col_no"`
	RowNo       int    `db:"row_no" json:"row_no"`
	StuNo       int    `db:"stu_no" json:"stu_no"`
	FullName    string `db:"full_name" json:"full_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	Dept        string `db:"dept" json:"dept"`
	Section     string `db:"section" json:"section"`
	Year        int    `db:"year" json:"year"`
}

// SeatLookup is the public view returned by the student-facing lookup.
type SeatLookup struct {
	ExamID     string `db:"exam_id" json:"exam_id"`
	ExamTitle  string `db:"exam_title" json:"exam_title"`
	StuNo      int    `db:"stu_no" json:"stu_no"`
	FullName   string `db:"full_name" json:"full_name"`
	RoomID     string `db:"room_id" json:"room_id"`
	BenchLabel string `db:"bench_label" json:"bench_label"`
	SeatNo     int    `db:"seat_no" json:"seat_no"`
}
