package dto

// CreateClassroomRequest captures POST /classrooms payload. Benches are
// materialized from the grid on creation.
type CreateClassroomRequest struct {
	RoomID        string `json:"roomId" validate:"required"`
	Building      string `json:"building" validate:"omitempty"`
	Columns       int    `json:"columns" validate:"required,min=1,max=50"`
	Rows          int    `json:"rows" validate:"required,min=1,max=50"`
	SeatsPerBench int    `json:"seatsPerBench" validate:"required,min=1,max=6"`
}

// UpdateClassroomRequest captures PUT /classrooms/:id payload. Grid
// dimensions are immutable after creation; only metadata may change.
type UpdateClassroomRequest struct {
	Building *string `json:"building" validate:"omitempty"`
	Active   *bool   `json:"active" validate:"omitempty"`
}
