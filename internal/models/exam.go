package models

import "time"

// Exam statuses track the allocation lifecycle.
const (
	ExamStatusDraft     = "DRAFT"
	ExamStatusAllocated = "ALLOCATED"
)

// Exam represents one sitting to be seated.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	ExamDate  time.Time `db:"exam_date" json:"exam_date"`
	Session   string    `db:"session" json:"session"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ExamRegistration links a student to an exam under a subject code.
type ExamRegistration struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RegistrationDetail is the registration joined with the student attributes
// the allocation engine scores on.
type RegistrationDetail struct {
	ExamRegistration
	StuNo    int    `db:"stu_no" json:"stu_no"`
	FullName string `db:"full_name" json:"full_name"`
	Year     int    `db:"year" json:"year"`
	Dept     string `db:"dept" json:"dept"`
	Section  string `db:"section" json:"section"`
}

// ExamFilter defines filter criteria for listing exams.
type ExamFilter struct {
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CapacityCheck compares registered headcount against available seats.
// BenchesNeeded is how many extra benches would close the shortfall.
type CapacityCheck struct {
	Registered    int  `json:"registered"`
	Seats         int  `json:"seats"`
	Fits          bool `json:"fits"`
	Shortfall     int  `json:"shortfall"`
	BenchesNeeded int  `json:"benches_needed"`
}
