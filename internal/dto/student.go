package dto

// CreateStudentRequest captures POST /students payload.
type CreateStudentRequest struct {
	StuNo    int     `json:"stuNo" validate:"required,min=1"`
	FullName string  `json:"fullName" validate:"required"`
	Year     int     `json:"year" validate:"required,min=1,max=8"`
	Dept     string  `json:"dept" validate:"required"`
	Section  string  `json:"section" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty"`
}

// UpdateStudentRequest captures PUT /students/:id payload. Nil fields are
// left unchanged.
type UpdateStudentRequest struct {
	FullName *string `json:"fullName" validate:"omitempty"`
	Year     *int    `json:"year" validate:"omitempty,min=1,max=8"`
	Dept     *string `json:"dept" validate:"omitempty"`
	Section  *string `json:"section" validate:"omitempty"`
	Phone    *string `json:"phone" validate:"omitempty"`
}
