package dto

import "github.com/examseat/seat-alloc-api/internal/models"

// AllocateRequest instructs the engine to seat an exam across classrooms.
type AllocateRequest struct {
	ClassroomIDs []string `json:"classroomIds" validate:"required,min=1,dive,required"`
	Seed         *int64   `json:"seed" validate:"omitempty"`
	Force        bool     `json:"force"`
}

// ViolationReport summarises residual proximity conflicts after a run.
type ViolationReport struct {
	SameSubjectSameBench int `json:"sameSubjectSameBench"`
	SameDeptSameBench    int `json:"sameDeptSameBench"`
	SameSubjectAdjacent  int `json:"sameSubjectAdjacent"`
	SameDeptAdjacent     int `json:"sameDeptAdjacent"`
	SameSectionAdjacent  int `json:"sameSectionAdjacent"`
	SameYearAdjacent     int `json:"sameYearAdjacent"`
	Total                int `json:"total"`
}

// WaitingStudent identifies a registrant left without a seat.
type WaitingStudent struct {
	StudentID   string `json:"studentId"`
	StuNo       int    `json:"stuNo"`
	FullName    string `json:"fullName"`
	SubjectCode string `json:"subjectCode"`
}

// AllocatedSeat is one placed student in the returned plan.
type AllocatedSeat struct {
	StudentID   string `json:"studentId"`
	StuNo       int    `json:"stuNo"`
	FullName    string `json:"fullName"`
	SubjectCode string `json:"subjectCode"`
	RoomID      string `json:"roomId"`
	BenchLabel  string `json:"benchLabel"`
	SeatNo      int    `json:"seatNo"`
}

// AllocateResponse returns the outcome of an allocation run.
type AllocateResponse struct {
	ExamID        string           `json:"examId"`
	TotalSlots    int              `json:"totalSlots"`
	Placed        int              `json:"placed"`
	Assignments   []AllocatedSeat  `json:"assignments"`
	Waiting       []WaitingStudent `json:"waiting"`
	Report        ViolationReport  `json:"report"`
	SwapTrials    int              `json:"swapTrials"`
	SwapsAccepted int              `json:"swapsAccepted"`
}

// AllocationListResponse is the persisted seating chart for an exam.
type AllocationListResponse struct {
	ExamID      string                    `json:"examId"`
	Allocations []models.AllocationDetail `json:"allocations"`
}

// SeatLookupQuery is the public lookup request.
type SeatLookupQuery struct {
	ExamID string `form:"examId" json:"examId" binding:"required" validate:"required"`
	StuNo  int    `form:"stuNo" json:"stuNo" binding:"required" validate:"required,min=1"`
}
