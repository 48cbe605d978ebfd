package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-center-api/internal/models"
	"github.com/noah-isme/review-center-api/internal/service"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
	"github.com/noah-isme/review-center-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students    *service.StudentService
	payments    *service.PaymentService
	expirations *service.ExpirationService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, payments *service.PaymentService, expirations *service.ExpirationService) *StudentHandler {
	return &StudentHandler{students: students, payments: payments, expirations: expirations}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email, school or address"
// @Param seasonId query string false "Filter by season"
// @Param status query string false "Filter by enrollment status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := parseStudentFilter(c)

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// ExportCSV godoc
// @Summary Export filtered students as CSV
// @Tags Students
// @Produce text/csv
// @Param search query string false "Search"
// @Param seasonId query string false "Filter by season"
// @Param status query string false "Filter by enrollment status"
// @Success 200 {string} string "CSV body"
// @Router /students/export [get]
func (h *StudentHandler) ExportCSV(c *gin.Context) {
	data, err := h.students.ExportCSV(c.Request.Context(), parseStudentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Export godoc
// @Summary Get student export representation
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	out, err := h.students.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentProfileRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.StudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.StudentProfileRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.StudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetupPayment godoc
// @Summary Generate invoices for the current season
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payment-setup [post]
func (h *StudentHandler) SetupPayment(c *gin.Context) {
	invoices, err := h.payments.SetupPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// FinishEnrollment godoc
// @Summary Mark the enrollment process finished
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id}/finish [post]
func (h *StudentHandler) FinishEnrollment(c *gin.Context) {
	if err := h.expirations.FinishEnrollmentProcess(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto godoc
// @Summary Upload a profile picture
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param photo formData file false "Image file"
// @Param keep formData bool false "Keep the existing picture"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/photo [post]
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	keep := c.PostForm("keep") == "true"

	var filename string
	var data []byte
	if !keep {
		file, err := c.FormFile("photo")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing photo"))
			return
		}
		src, err := file.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
			return
		}
		defer src.Close() //nolint:errcheck
		data, err = io.ReadAll(src)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
			return
		}
		filename = file.Filename
	}

	saved, err := h.students.SaveProfilePicture(c.Request.Context(), c.Param("id"), filename, data, keep)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"profile_pic": saved}, nil)
}

// Statement godoc
// @Summary Download the statement of account
// @Tags Students
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {string} string "PDF body"
// @Router /students/{id}/statement [get]
func (h *StudentHandler) Statement(c *gin.Context) {
	data, err := h.students.Statement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statement.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func parseStudentFilter(c *gin.Context) models.StudentFilter {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.SeasonID = c.Query("seasonId")
	if status := c.Query("status"); status != "" {
		filter.Status = models.EnrollmentStatus(strings.ToUpper(status))
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
