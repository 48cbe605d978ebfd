package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-center-api/internal/models"
	"github.com/noah-isme/review-center-api/internal/service"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
	"github.com/noah-isme/review-center-api/pkg/response"
)

// SeasonHandler exposes review season endpoints.
type SeasonHandler struct {
	seasons *service.SeasonService
}

// NewSeasonHandler constructs SeasonHandler.
func NewSeasonHandler(seasons *service.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasons: seasons}
}

// List godoc
// @Summary List review seasons
// @Tags Seasons
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /seasons [get]
func (h *SeasonHandler) List(c *gin.Context) {
	var filter models.SeasonFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	seasons, pagination, err := h.seasons.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seasons, pagination)
}

// Current godoc
// @Summary Get the season in progress
// @Tags Seasons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seasons/current [get]
func (h *SeasonHandler) Current(c *gin.Context) {
	season, err := h.seasons.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if season == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no season in progress"))
		return
	}
	response.JSON(c, http.StatusOK, season, nil)
}

// Get godoc
// @Summary Get season
// @Tags Seasons
// @Produce json
// @Param id path string true "Season ID"
// @Success 200 {object} response.Envelope
// @Router /seasons/{id} [get]
func (h *SeasonHandler) Get(c *gin.Context) {
	season, err := h.seasons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, season, nil)
}

// Create godoc
// @Summary Open a new review season
// @Tags Seasons
// @Accept json
// @Produce json
// @Param payload body service.CreateSeasonRequest true "Season payload"
// @Success 201 {object} response.Envelope
// @Router /seasons [post]
func (h *SeasonHandler) Create(c *gin.Context) {
	var req service.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	season, err := h.seasons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, season)
}
