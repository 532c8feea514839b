package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/service"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
	"github.com/examseat/seat-alloc-api/pkg/response"
)

// AllocationHandler exposes seat-assignment endpoints.
type AllocationHandler struct {
	allocations *service.AllocationService
}

// NewAllocationHandler constructs AllocationHandler.
func NewAllocationHandler(allocations *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

// Allocate godoc
// @Summary Run seat assignment for an exam
// @Description Places every registrant onto a seat, minimizing adjacency
// @Description conflicts, then persists the chart. Re-running on an allocated
// @Description exam requires force=true. Passing a seed makes the run
// @Description reproducible.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.AllocateRequest true "Allocation payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/allocate [post]
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.allocations.Allocate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary Get the persisted seating chart for an exam
// @Tags Allocations
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	res, err := h.allocations.Allocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Lookup godoc
// @Summary Look up a student's seat by roll number
// @Description Public endpoint backed by a short-lived cache.
// @Tags Allocations
// @Produce json
// @Param examId query string true "Exam ID"
// @Param stuNo query int true "Roll number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/seat-lookup [get]
func (h *AllocationHandler) Lookup(c *gin.Context) {
	var query dto.SeatLookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "examId and stuNo are required"))
		return
	}
	seat, err := h.allocations.Lookup(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat, nil)
}
