package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examseat/seat-alloc-api/internal/dto"
	"github.com/examseat/seat-alloc-api/internal/models"
	appErrors "github.com/examseat/seat-alloc-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByStuNo(ctx context.Context, stuNo int, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByStuNo(ctx, req.StuNo, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already used")
	}
	student := &models.Student{
		StuNo:    req.StuNo,
		FullName: req.FullName,
		Year:     req.Year,
		Dept:     req.Dept,
		Section:  req.Section,
		Phone:    req.Phone,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Year != nil {
		student.Year = *req.Year
	}
	if req.Dept != nil {
		student.Dept = *req.Dept
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student from the roster.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// csvColumns is the required header of a roster import file. A trailing
// phone column is accepted but not required.
var csvColumns = []string{"stu_no", "full_name", "year", "dept", "section"}

// ImportCSV ingests a roster file. Rows with a duplicate roll number are
// skipped; malformed rows are reported but do not abort the import.
func (s *StudentService) ImportCSV(ctx context.Context, r io.Reader) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read csv header")
	}
	if err := validateHeader(header); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv header")
	}

	summary := &models.ImportSummary{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req, err := parseStudentRow(record)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		exists, err := s.repo.ExistsByStuNo(ctx, req.StuNo, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
		}
		if exists {
			summary.SkippedDuplicates++
			continue
		}

		student := &models.Student{
			StuNo:    req.StuNo,
			FullName: req.FullName,
			Year:     req.Year,
			Dept:     req.Dept,
			Section:  req.Section,
			Phone:    req.Phone,
		}
		if err := s.repo.Create(ctx, student); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		summary.Inserted++
	}

	s.logger.Info("roster import finished",
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.SkippedDuplicates),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func validateHeader(header []string) error {
	if len(header) < len(csvColumns) {
		return fmt.Errorf("expected columns %s", strings.Join(csvColumns, ","))
	}
	for i, col := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("expected column %q at position %d, got %q", col, i+1, header[i])
		}
	}
	if len(header) > len(csvColumns) && !strings.EqualFold(strings.TrimSpace(header[len(csvColumns)]), "phone") {
		return fmt.Errorf("unexpected column %q, only phone may follow %s", header[len(csvColumns)], strings.Join(csvColumns, ","))
	}
	return nil
}

func parseStudentRow(record []string) (*dto.CreateStudentRequest, error) {
	if len(record) < len(csvColumns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(csvColumns), len(record))
	}
	stuNo, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid stu_no %q", record[0])
	}
	year, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", record[2])
	}
	name := strings.TrimSpace(record[1])
	if name == "" {
		return nil, fmt.Errorf("full_name is empty")
	}
	req := &dto.CreateStudentRequest{
		StuNo:    stuNo,
		FullName: name,
		Year:     year,
		Dept:     strings.TrimSpace(record[3]),
		Section:  strings.TrimSpace(record[4]),
	}
	if len(record) > len(csvColumns) {
		if phone := strings.TrimSpace(record[len(csvColumns)]); phone != "" {
			req.Phone = &phone
		}
	}
	return req, nil
}
