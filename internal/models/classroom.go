package models

import "time"

// Classroom represents an exam room with a fixed bench grid.
type Classroom struct {
	ID            string    `db:"id" json:"id"`
	RoomID        string    `db:"room_id" json:"room_id"`
	Building      string    `db:"building" json:"building"`
	Columns       int       `db:"columns" json:"columns"`
	Rows          int       `db:"rows" json:"rows"`
	SeatsPerBench int       `db:"seats_per_bench" json:"seats_per_bench"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Bench is one physical bench inside a classroom grid. Benches are
// materialized when the classroom is created so layouts stay stable even
// if the grid dimensions later change.
type Bench struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Label       string    `db:"label" json:"label"`
	ColNo       int       `db:"col_no" json:"col_no"`
	RowNo       int       `db:"row_no" json:"row_no"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassroomDetail extends Classroom with its materialized benches.
type ClassroomDetail struct {
	Classroom
	Benches []Bench `json:"benches"`
}

// ClassroomFilter defines filter criteria for listing classrooms.
type ClassroomFilter struct {
	Building  string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
