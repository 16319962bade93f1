package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"servicehub/services/appointment"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	Service    appointment.AppointmentService
	Gate       utils.ConfirmationGate
	ConfirmTTL time.Duration
}

func NewAppointmentHandler(svc appointment.AppointmentService, gate utils.ConfirmationGate, ttl time.Duration) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Gate: gate, ConfirmTTL: ttl}
}

type cancelRequest struct {
	ConfirmationToken string `json:"confirmationToken"`
}

// CancelAppointmentHandler is two-step: a call without a token returns 428
// and a fresh token; repeating the call with it performs the cancellation.
func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, appointment.CodeInvalidParameters, "Invalid request payload", err.Error())
		return
	}

	confirmed := false
	if req.ConfirmationToken != "" {
		ok, err := h.Gate.Redeem(ctx, id, req.ConfirmationToken)
		if err != nil {
			utils.JSONError(c, http.StatusBadGateway, appointment.CodePersistFailure, "Could not verify confirmation", err.Error())
			return
		}
		if !ok {
			logger.Warn("appointment.cancel.bad_token", zap.String("appointmentId", id))
		}
		confirmed = ok
	}

	appt, err := h.Service.CancelAppointment(ctx, id, confirmed)
	if errors.Is(err, appointment.ErrConfirmationRequired) {
		h.requireConfirmation(c, id, req.ConfirmationToken != "")
		return
	}
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled", "appointment": appt})
}

func (h *AppointmentHandler) requireConfirmation(c *gin.Context, id string, hadToken bool) {
	token, err := h.Gate.Issue(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, appointment.CodePersistFailure, "Could not issue confirmation", err.Error())
		return
	}
	message := "Cancellation must be confirmed"
	if hadToken {
		message = "Confirmation token invalid or expired"
	}
	c.JSON(http.StatusPreconditionRequired, gin.H{
		"error":             message,
		"code":              appointment.CodeConfirmationRequired,
		"confirmationToken": token,
		"expiresIn":         int(h.ConfirmTTL.Seconds()),
	})
}

// CompleteAppointmentHandler completes one appointment whose end has passed.
func (h *AppointmentHandler) CompleteAppointmentHandler(c *gin.Context) {
	appt, err := h.Service.CompleteAppointment(c.Request.Context(), c.Param("id"), time.Time{})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment completed", "appointment": appt})
}

type sweepRequest struct {
	AsOf *time.Time `json:"asOf"`
}

// RunSweepHandler runs the completion sweep synchronously.
func (h *AppointmentHandler) RunSweepHandler(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, appointment.CodeInvalidParameters, "Invalid request payload", err.Error())
		return
	}
	var asOf time.Time
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	count, err := h.Service.RunCompletionSweep(c.Request.Context(), asOf)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func writeLifecycleError(c *gin.Context, err error) {
	var lifecycleErr *appointment.LifecycleError
	if !errors.As(err, &lifecycleErr) {
		utils.JSONError(c, http.StatusInternalServerError, "", "Unexpected error", err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch lifecycleErr.Code {
	case appointment.CodeInvalidParameters:
		status = http.StatusBadRequest
	case appointment.CodeNotFound:
		status = http.StatusNotFound
	case appointment.CodeInvalidTransition:
		status = http.StatusConflict
	case appointment.CodeConfirmationRequired:
		status = http.StatusPreconditionRequired
	case appointment.CodePersistFailure:
		status = http.StatusBadGateway
	}
	utils.JSONError(c, status, lifecycleErr.Code, lifecycleErr.Message, "")
}
