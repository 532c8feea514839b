package dto

// CreateExamRequest captures POST /exams payload.
type CreateExamRequest struct {
	Title    string `json:"title" validate:"required"`
	ExamDate string `json:"examDate" validate:"required,datetime=2006-01-02"`
	Session  string `json:"session" validate:"required,oneof=MORNING AFTERNOON"`
}

// RegisterStudentsRequest bulk-registers students for an exam.
type RegisterStudentsRequest struct {
	Registrations []RegistrationEntry `json:"registrations" validate:"required,min=1,dive"`
}

// RegistrationEntry pairs a student with a subject code for one exam.
type RegistrationEntry struct {
	StudentID   string `json:"studentId" validate:"required"`
	SubjectCode string `json:"subjectCode" validate:"required"`
}

// CapacityQuery selects the classrooms to check an exam against.
type CapacityQuery struct {
	ClassroomIDs []string `form:"classroomIds" json:"classroomIds" validate:"required,min=1"`
}
