package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"servicehub/models"
	"servicehub/services/availability"
	"servicehub/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxOccurrenceSpan bounds the window GET /recurrence/:rule/occurrences will expand.
const maxOccurrenceSpan = 2 * 366 * 24 * time.Hour

type AvailabilityHandler struct {
	Service        availability.AvailabilityService
	Location       *time.Location
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

func NewAvailabilityHandler(svc availability.AvailabilityService, loc *time.Location, attempts int, baseDelay time.Duration) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{Service: svc, Location: loc, RetryAttempts: attempts, RetryBaseDelay: baseDelay}
}

// GetWeeklySlotsHandler serves the slot grid for one provider listing.
func (h *AvailabilityHandler) GetWeeklySlotsHandler(c *gin.Context) {
	logger := getLogger(c)

	params, err := h.bindGenerateParams(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidParameters, "Invalid query parameters", err.Error())
		return
	}

	ctx := c.Request.Context()
	var (
		result   models.WeeklySlotsFetchResult
		genErr   error
		attempts int
	)
	// only fetch failures are retried; invalid parameters stop at once
	_ = backoff.Retry(func() error {
		attempts++
		result, genErr = h.Service.GenerateWeeklySlots(ctx, params)
		if genErr != nil {
			return backoff.Permanent(genErr)
		}
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return nil
	}, h.fetchBackOff(ctx))

	if genErr != nil {
		var engineErr *availability.EngineError
		if errors.As(genErr, &engineErr) {
			utils.JSONError(c, http.StatusBadRequest, engineErr.Code, "Invalid slot request", engineErr.Message)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "", "Failed to generate slots", genErr.Error())
		return
	}
	if result.Error != "" {
		logger.Warn("slots.fetch.gave_up",
			zap.String("providerId", params.ProviderID),
			zap.Int("attempts", attempts),
			zap.String("error", result.Error),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"groups": availability.Group(result.Slots),
		"stats":  availability.Summarize(result.Slots),
	})
}

// fetchBackOff doubles the delay from RetryBaseDelay for at most
// RetryAttempts calls in total.
func (h *AvailabilityHandler) fetchBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.RetryBaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	retries := h.RetryAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (h *AvailabilityHandler) bindGenerateParams(c *gin.Context) (models.GenerateParams, error) {
	params := models.GenerateParams{
		ProviderID: c.Param("providerId"),
		ListingID:  c.Param("listingId"),
		Recurrence: c.Query("recurrence"),
	}

	var err error
	if v := c.Query("duration"); v != "" {
		if params.ServiceDuration, err = strconv.Atoi(v); err != nil {
			return params, errors.New("duration must be an integer number of minutes")
		}
	}
	if v := c.Query("daysAhead"); v != "" {
		if params.DaysAhead, err = strconv.Atoi(v); err != nil {
			return params, errors.New("daysAhead must be an integer")
		}
	}
	if v := c.Query("startDate"); v != "" {
		if params.StartDate, err = time.ParseInLocation(models.DateLayout, v, h.Location); err != nil {
			return params, errors.New("startDate must be formatted as YYYY-MM-DD")
		}
	}
	return params, nil
}

// DescribeRecurrenceHandler returns display metadata for a recurrence rule.
func (h *AvailabilityHandler) DescribeRecurrenceHandler(c *gin.Context) {
	descriptor, err := availability.DescribeRecurrence(c.Param("rule"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidRecurrenceRule, "Unknown recurrence rule", err.Error())
		return
	}
	c.JSON(http.StatusOK, descriptor)
}

// ListOccurrencesHandler expands a rule from anchor through until.
func (h *AvailabilityHandler) ListOccurrencesHandler(c *gin.Context) {
	anchor, err := h.parseInstant(c.Query("anchor"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidParameters, "Invalid anchor", err.Error())
		return
	}
	until, err := h.parseInstant(c.Query("until"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidParameters, "Invalid until", err.Error())
		return
	}
	if until.Sub(anchor) > maxOccurrenceSpan {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidParameters, "Window too large", "until may be at most two years after anchor")
		return
	}

	occurrences, err := availability.ResolveOccurrences(c.Param("rule"), anchor, until)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, availability.CodeInvalidRecurrenceRule, "Unknown recurrence rule", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

// parseInstant accepts RFC3339 or a bare date in the configured zone.
func (h *AvailabilityHandler) parseInstant(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("value is required")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, v, h.Location)
	if err != nil {
		return time.Time{}, errors.New("expected RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
