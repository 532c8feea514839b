package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationHandlerAllocateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/exams/exam-1/allocate", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	handler.Allocate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAllocationHandlerLookupMissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/seat-lookup", nil)
	c.Request = req

	handler.Lookup(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/exams/exam-1/exports", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
