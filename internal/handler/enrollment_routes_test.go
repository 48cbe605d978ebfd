package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	"github.com/noah-isme/review-center-api/internal/service"
)

type enrollmentStoreStub struct {
	details  []models.EnrollmentDetail
	enrolled bool
}

func (s *enrollmentStoreStub) FindOrCreate(ctx context.Context, seasonID, studentID string) (*models.SeasonEnrollment, error) {
	return &models.SeasonEnrollment{ID: "enr-1", SeasonID: seasonID, StudentID: studentID, Status: models.EnrollmentStatusEnrolling}, nil
}

func (s *enrollmentStoreStub) Exists(ctx context.Context, seasonID, studentID string) (bool, error) {
	return len(s.details) > 0, nil
}

func (s *enrollmentStoreStub) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return s.details, nil
}

func (s *enrollmentStoreStub) ExistsEnrolled(ctx context.Context, studentID string) (bool, error) {
	return s.enrolled, nil
}

type invoiceReaderStub struct {
	invoices []models.Invoice
	balance  float64
}

func (s *invoiceReaderStub) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error) {
	return s.invoices, nil
}

func (s *invoiceReaderStub) ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	return s.invoices, nil
}

func (s *invoiceReaderStub) SumBalanceByStudent(ctx context.Context, studentID string) (float64, error) {
	return s.balance, nil
}

type seasonRepoStub struct {
	current *models.ReviewSeason
}

func (s *seasonRepoStub) Current(ctx context.Context, now time.Time) (*models.ReviewSeason, error) {
	return s.current, nil
}

func (s *seasonRepoStub) FindByID(ctx context.Context, id string) (*models.ReviewSeason, error) {
	if s.current != nil && s.current.ID == id {
		return s.current, nil
	}
	return nil, sql.ErrNoRows
}

func (s *seasonRepoStub) List(ctx context.Context, filter models.SeasonFilter) ([]models.ReviewSeason, int, error) {
	if s.current == nil {
		return nil, 0, nil
	}
	return []models.ReviewSeason{*s.current}, 1, nil
}

func (s *seasonRepoStub) Create(ctx context.Context, season *models.ReviewSeason) error {
	season.ID = "season-created"
	s.current = season
	return nil
}

func buildEnrollmentRouter(store *enrollmentStoreStub, invoices *invoiceReaderStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewEnrollmentHandler(service.NewEnrollmentService(store, invoices, zap.NewNop()))
	router.GET("/students/:id/enrollment", h.Status)
	router.GET("/students/:id/invoices", h.Invoices)
	router.GET("/students/:id/invoices/current", h.CurrentInvoices)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEnrollmentStatusRoute(t *testing.T) {
	store := &enrollmentStoreStub{
		details: []models.EnrollmentDetail{{
			SeasonEnrollment: models.SeasonEnrollment{ID: "enr-1", Status: models.EnrollmentStatusEnrolling},
			SeasonLabel:      "Batch 2026",
		}},
	}
	router := buildEnrollmentRouter(store, &invoiceReaderStub{balance: 6000})

	req, _ := http.NewRequest(http.MethodGet, "/students/s1/enrollment", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"ENROLLING"`)
	require.Contains(t, resp.Body.String(), `"balance":6000`)
	require.Contains(t, resp.Body.String(), `"current_enrollment"`)
}

func TestEnrollmentStatusRouteNoEnrollment(t *testing.T) {
	router := buildEnrollmentRouter(&enrollmentStoreStub{}, &invoiceReaderStub{})

	req, _ := http.NewRequest(http.MethodGet, "/students/s1/enrollment", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"UNDEFINED"`)
	require.NotContains(t, resp.Body.String(), `"current_enrollment"`)
}

func TestCurrentInvoicesRouteReportsTotal(t *testing.T) {
	store := &enrollmentStoreStub{
		details: []models.EnrollmentDetail{{
			SeasonEnrollment: models.SeasonEnrollment{ID: "enr-1", Status: models.EnrollmentStatusEnrolling},
		}},
	}
	invoices := &invoiceReaderStub{invoices: []models.Invoice{
		{ID: "i1", EnrollmentID: "enr-1", Amount: 18000},
		{ID: "i2", EnrollmentID: "enr-1", Amount: 6000},
	}}
	router := buildEnrollmentRouter(store, invoices)

	req, _ := http.NewRequest(http.MethodGet, "/students/s1/invoices/current", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"total_amount":24000`)
}

func TestSeasonCurrentRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	repo := &seasonRepoStub{current: &models.ReviewSeason{ID: "season-1", Label: "Batch 2026"}}
	h := NewSeasonHandler(service.NewSeasonService(repo, nil, time.Minute, nil, zap.NewNop()))
	router.GET("/seasons/current", h.Current)

	req, _ := http.NewRequest(http.MethodGet, "/seasons/current", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"label":"Batch 2026"`)
}

func TestSeasonCurrentRouteNone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewSeasonHandler(service.NewSeasonService(&seasonRepoStub{}, nil, time.Minute, nil, zap.NewNop()))
	router.GET("/seasons/current", h.Current)

	req, _ := http.NewRequest(http.MethodGet, "/seasons/current", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Contains(t, resp.Body.String(), "no season in progress")
}
