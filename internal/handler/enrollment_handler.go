package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-center-api/internal/service"
	"github.com/noah-isme/review-center-api/pkg/response"
)

// EnrollmentHandler exposes enrollment lifecycle and ledger reads.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Status godoc
// @Summary Get a student's enrollment summary
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollment [get]
func (h *EnrollmentHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("id")

	status, err := h.enrollments.EnrollmentStatus(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	current, err := h.enrollments.CurrentEnrollment(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	balance, err := h.enrollments.Balance(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrolledOnce, err := h.enrollments.EnrolledOnce(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"status":        status,
		"balance":       balance,
		"enrolled_once": enrolledOnce,
	}
	if current != nil {
		payload["current_enrollment"] = current
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Invoices godoc
// @Summary List a student's invoices across all enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/invoices [get]
func (h *EnrollmentHandler) Invoices(c *gin.Context) {
	invoices, err := h.enrollments.Invoices(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// CurrentInvoices godoc
// @Summary List invoices on the current enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/invoices/current [get]
func (h *EnrollmentHandler) CurrentInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("id")

	invoices, err := h.enrollments.CurrentInvoices(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	total, err := h.enrollments.TotalCurrentAmount(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil, map[string]interface{}{"total_amount": total})
}
