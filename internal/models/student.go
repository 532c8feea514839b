package models

import "time"

// Student represents an examinee on the institution roster.
type Student struct {
	ID        string    `db:"id" json:"id"`
	StuNo     int       `db:"stu_no" json:"stu_no"`
	FullName  string    `db:"full_name" json:"full_name"`
	Year      int       `db:"year" json:"year"`
	Dept      string    `db:"dept" json:"dept"`
	Section   string    `db:"section" json:"section"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Dept      string
	Section   string
	Year      *int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ImportSummary reports the outcome of a roster CSV import.
type ImportSummary struct {
	Inserted          int      `json:"inserted"`
	SkippedDuplicates int      `json:"skipped_duplicates"`
	Failed            int      `json:"failed"`
	Errors            []string `json:"errors,omitempty"`
}
