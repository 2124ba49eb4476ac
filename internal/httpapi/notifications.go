package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
)

// NotificationHandlers serves dashboard notification rows and the per-recipient
// preference toggles that gate them.
type NotificationHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewNotificationHandlers constructs NotificationHandlers.
func NewNotificationHandlers(database *gorm.DB, logger *zap.Logger) *NotificationHandlers {
	return &NotificationHandlers{database: database, logger: logger}
}

// ListNotifications handles GET /api/admin/organizations/:orgId/notifications.
func (h *NotificationHandlers) ListNotifications(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	var notifications []model.Notification
	if listErr := h.database.WithContext(context.Request.Context()).
		Where("organization_id = ?", organizationID).
		Order("created_at desc").Find(&notifications).Error; listErr != nil {
		h.logger.Warn("list_notifications", zap.Error(listErr), zap.String("organization_id", organizationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /api/admin/notifications/:notificationId/read.
func (h *NotificationHandlers) MarkNotificationRead(context *gin.Context) {
	notificationID := strings.TrimSpace(context.Param("notificationId"))

	result := h.database.WithContext(context.Request.Context()).
		Model(&model.Notification{}).
		Where("id = ?", notificationID).
		Update("read", true)
	if result.Error != nil {
		h.logger.Warn("mark_notification_read", zap.Error(result.Error), zap.String("notification_id", notificationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	if result.RowsAffected == 0 {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueNotFound})
		return
	}
	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

// GetPreferences handles GET /api/admin/organizations/:orgId/notification-preferences?email=...
// An absent row answers with the default toggles without creating one.
func (h *NotificationHandlers) GetPreferences(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))
	email := strings.ToLower(strings.TrimSpace(context.Query("email")))
	if email == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidRequest})
		return
	}

	var preference model.NotificationPreference
	findErr := h.database.WithContext(context.Request.Context()).
		First(&preference, "organization_id = ? AND email = ?", organizationID, email).Error
	if findErr != nil {
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			h.logger.Warn("load_notification_preferences", zap.Error(findErr), zap.String("organization_id", organizationID))
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
			return
		}
		preference = model.NotificationPreference{
			OrganizationID:   organizationID,
			Email:            email,
			DonationReceived: true,
			GoalReached:      true,
			TeamActivity:     false,
		}
	}
	context.JSON(http.StatusOK, preference)
}

type updatePreferencesRequest struct {
	Email            string `json:"email"`
	DonationReceived *bool  `json:"donationReceived"`
	GoalReached      *bool  `json:"goalReached"`
	TeamActivity     *bool  `json:"teamActivity"`
}

// UpdatePreferences handles PUT /api/admin/organizations/:orgId/notification-preferences,
// upserting the row for the given email.
func (h *NotificationHandlers) UpdatePreferences(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	var payload updatePreferencesRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidRequest})
		return
	}

	requestContext := context.Request.Context()

	var preference model.NotificationPreference
	findErr := h.database.WithContext(requestContext).
		First(&preference, "organization_id = ? AND email = ?", organizationID, email).Error
	if findErr != nil {
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			h.logger.Warn("load_notification_preferences", zap.Error(findErr), zap.String("organization_id", organizationID))
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
			return
		}
		preference = model.NotificationPreference{
			ID:               storage.NewID(),
			OrganizationID:   organizationID,
			Email:            email,
			DonationReceived: true,
			GoalReached:      true,
			TeamActivity:     false,
		}
	}

	if payload.DonationReceived != nil {
		preference.DonationReceived = *payload.DonationReceived
	}
	if payload.GoalReached != nil {
		preference.GoalReached = *payload.GoalReached
	}
	if payload.TeamActivity != nil {
		preference.TeamActivity = *payload.TeamActivity
	}

	if saveErr := h.database.WithContext(requestContext).Save(&preference).Error; saveErr != nil {
		h.logger.Warn("save_notification_preferences", zap.Error(saveErr), zap.String("organization_id", organizationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusOK, preference)
}
