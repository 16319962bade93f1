package handlers

import (
	"errors"
	"net/http"
	"time"

	overrideRepo "servicehub/database/repository/override"
	"servicehub/models"
	"servicehub/services/invalidation"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OverrideHandler struct {
	Repo     overrideRepo.OverrideRepository
	Notifier invalidation.Notifier
	Location *time.Location
}

func NewOverrideHandler(repo overrideRepo.OverrideRepository, notifier invalidation.Notifier, loc *time.Location) *OverrideHandler {
	if notifier == nil {
		notifier = invalidation.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OverrideHandler{Repo: repo, Notifier: notifier, Location: loc}
}

type createOverrideRequest struct {
	ListingID string `json:"listingId"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
}

// CreateOverrideHandler disables a slot, or a whole day when time is omitted.
func (h *OverrideHandler) CreateOverrideHandler(c *gin.Context) {
	logger := getLogger(c)
	providerID := c.Param("providerId")

	var req createOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidParameters", "Invalid request payload", err.Error())
		return
	}
	day, err := time.ParseInLocation(models.DateLayout, req.Date, h.Location)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidParameters", "Invalid date", "date must be formatted as YYYY-MM-DD")
		return
	}
	if req.Time != "" {
		if _, err := time.Parse(models.ClockLayout, req.Time); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalidParameters", "Invalid time", "time must be formatted as HH:MM")
			return
		}
	}

	override := &models.ManualOverride{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		ListingID:  req.ListingID,
		Date:       req.Date,
		Time:       req.Time,
		Reason:     req.Reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Repo.Create(c.Request.Context(), override); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "persistFailure", "Failed to save override", err.Error())
		return
	}
	logger.Info("override.created", zap.String("providerId", providerID), zap.String("overrideId", override.ID))

	h.invalidate(c, override, day, "override.created")
	c.JSON(http.StatusCreated, gin.H{"override": override})
}

// DeleteOverrideHandler re-enables whatever an override disabled.
func (h *OverrideHandler) DeleteOverrideHandler(c *gin.Context) {
	logger := getLogger(c)
	providerID := c.Param("providerId")

	removed, err := h.Repo.Delete(c.Request.Context(), providerID, c.Param("id"))
	if errors.Is(err, overrideRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "notFound", "Override not found", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "persistFailure", "Failed to delete override", err.Error())
		return
	}
	logger.Info("override.deleted", zap.String("providerId", providerID), zap.String("overrideId", removed.ID))

	if day, err := time.ParseInLocation(models.DateLayout, removed.Date, h.Location); err == nil {
		h.invalidate(c, removed, day, "override.deleted")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Override deleted", "override": removed})
}

func (h *OverrideHandler) invalidate(c *gin.Context, o *models.ManualOverride, day time.Time, reason string) {
	ev := models.InvalidationEvent{
		ProviderID: o.ProviderID,
		ListingID:  o.ListingID,
		Range:      models.DateRange{Start: day, End: day.AddDate(0, 0, 1)},
		Reason:     reason,
		EmittedAt:  time.Now().UTC(),
	}
	if err := h.Notifier.NotifyInvalidate(c.Request.Context(), ev); err != nil {
		getLogger(c).Error("override.invalidate_failed", zap.String("providerId", o.ProviderID), zap.Error(err))
	}
}
