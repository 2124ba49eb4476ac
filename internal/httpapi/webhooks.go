package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
)

const (
	errorValueDonationNotFound = "donation_not_found"
	errorValueInvalidEvent     = "invalid_event"

	webhookEventDonationCompleted = "donation.completed"
	webhookEventDonationFailed    = "donation.failed"

	donationStatusFailed = "failed"
)

// WebhookHandlers receives donation lifecycle events from the external
// payment provider.
type WebhookHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
	notifier DonationNotifier
}

// NewWebhookHandlers constructs WebhookHandlers.
func NewWebhookHandlers(database *gorm.DB, logger *zap.Logger, notifier DonationNotifier) *WebhookHandlers {
	return &WebhookHandlers{
		database: database,
		logger:   logger,
		notifier: resolveDonationNotifier(notifier),
	}
}

type donationWebhookRequest struct {
	Event      string `json:"event"`
	DonationID string `json:"donationId"`
}

// DonationEvent handles POST /api/webhooks/donations. A completed event
// transitions the donation from pending to completed, accrues the amount onto
// the chosen cause and fans out notifications. The handler is idempotent: a
// donation already past pending is acknowledged without side effects.
func (h *WebhookHandlers) DonationEvent(context *gin.Context) {
	var payload donationWebhookRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	event := strings.TrimSpace(payload.Event)
	if event != webhookEventDonationCompleted && event != webhookEventDonationFailed {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidEvent})
		return
	}

	requestContext := context.Request.Context()

	var donation model.Donation
	if findErr := h.database.WithContext(requestContext).
		First(&donation, "id = ?", strings.TrimSpace(payload.DonationID)).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueDonationNotFound})
		return
	}

	if donation.Status != model.DonationStatusPending {
		context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK, "donation_status": donation.Status})
		return
	}

	if event == webhookEventDonationFailed {
		donation.Status = donationStatusFailed
		if saveErr := h.database.WithContext(requestContext).Save(&donation).Error; saveErr != nil {
			h.logger.Warn("save_donation", zap.Error(saveErr), zap.String("donation_id", donation.ID))
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
			return
		}
		context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK, "donation_status": donation.Status})
		return
	}

	donation.Status = model.DonationStatusCompleted

	var cause model.Cause
	causeFound := false
	if donation.CauseID != "" {
		if findErr := h.database.WithContext(requestContext).
			First(&cause, "id = ?", donation.CauseID).Error; findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				h.logger.Warn("load_cause", zap.Error(findErr), zap.String("cause_id", donation.CauseID))
			}
		} else {
			causeFound = true
		}
	}

	transactionErr := h.database.WithContext(requestContext).Transaction(func(transaction *gorm.DB) error {
		if saveErr := transaction.Save(&donation).Error; saveErr != nil {
			return saveErr
		}
		if causeFound {
			if accrueErr := cause.Accrue(donation.Amount); accrueErr != nil {
				return accrueErr
			}
			if saveErr := transaction.Save(&cause).Error; saveErr != nil {
				return saveErr
			}
		}
		return nil
	})
	if transactionErr != nil {
		h.logger.Warn("complete_donation", zap.Error(transactionErr), zap.String("donation_id", donation.ID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	organization := h.loadOrganizationForWidget(context, donation.WidgetID)
	if notifyErr := h.notifier.NotifyDonation(requestContext, organization, donation, cause); notifyErr != nil {
		h.logger.Warn("notify_donation", zap.Error(notifyErr), zap.String("donation_id", donation.ID))
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK, "donation_status": donation.Status})
}

func (h *WebhookHandlers) loadOrganizationForWidget(context *gin.Context, widgetID string) model.Organization {
	requestContext := context.Request.Context()

	var widget model.Widget
	if findErr := h.database.WithContext(requestContext).
		First(&widget, "id = ?", widgetID).Error; findErr != nil {
		return model.Organization{}
	}

	var organization model.Organization
	if findErr := h.database.WithContext(requestContext).
		First(&organization, "id = ?", widget.OrganizationID).Error; findErr != nil {
		return model.Organization{ID: widget.OrganizationID}
	}
	return organization
}
