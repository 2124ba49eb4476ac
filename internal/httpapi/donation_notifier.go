package httpapi

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
)

// DonationNotifier fans a completed donation out to the organization's
// dashboard notifications, honoring per-recipient preferences.
type DonationNotifier interface {
	NotifyDonation(ctx context.Context, organization model.Organization, donation model.Donation, cause model.Cause) error
}

type noopDonationNotifier struct{}

func (noopDonationNotifier) NotifyDonation(ctx context.Context, organization model.Organization, donation model.Donation, cause model.Cause) error {
	return nil
}

func resolveDonationNotifier(notifier DonationNotifier) DonationNotifier {
	if notifier == nil {
		return noopDonationNotifier{}
	}
	return notifier
}

// DatabaseDonationNotifier writes Notification rows for donation-received and
// goal-reached events.
type DatabaseDonationNotifier struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewDatabaseDonationNotifier constructs a DatabaseDonationNotifier.
func NewDatabaseDonationNotifier(database *gorm.DB, logger *zap.Logger) *DatabaseDonationNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseDonationNotifier{database: database, logger: logger}
}

// NotifyDonation records a donation-received notification, and a goal-reached
// notification when this donation pushed the cause past its goal. Each type is
// gated by the organization contact's NotificationPreference row; a missing
// row falls back to the preference defaults.
func (notifier *DatabaseDonationNotifier) NotifyDonation(ctx context.Context, organization model.Organization, donation model.Donation, cause model.Cause) error {
	if notifier.recipientAllows(ctx, organization, model.NotificationTypeDonationReceived) {
		title := fmt.Sprintf("Donation of $%.2f received", float64(donation.Amount)/100)
		body := fmt.Sprintf("A %s donation was completed for %s.", donation.Frequency, organization.PublicName())
		if cause.Name != "" {
			body = fmt.Sprintf("A %s donation was completed for cause %q.", donation.Frequency, cause.Name)
		}
		if createErr := notifier.create(ctx, organization.ID, model.NotificationTypeDonationReceived, title, body); createErr != nil {
			return createErr
		}
	}

	crossedGoal := cause.GoalAmount > 0 && cause.RaisedAmount >= cause.GoalAmount && cause.RaisedAmount-donation.Amount < cause.GoalAmount
	if crossedGoal && notifier.recipientAllows(ctx, organization, model.NotificationTypeGoalReached) {
		goalTitle := fmt.Sprintf("Cause %q reached its goal", cause.Name)
		goalBody := fmt.Sprintf("Raised $%.2f of the $%.2f goal.", float64(cause.RaisedAmount)/100, float64(cause.GoalAmount)/100)
		if createErr := notifier.create(ctx, organization.ID, model.NotificationTypeGoalReached, goalTitle, goalBody); createErr != nil {
			return createErr
		}
	}

	return nil
}

// recipientAllows checks the stored preference for the organization's contact
// email. No stored row means the defaults apply: donation-received and
// goal-reached on, team-activity off.
func (notifier *DatabaseDonationNotifier) recipientAllows(ctx context.Context, organization model.Organization, notificationType string) bool {
	fallback := model.NotificationPreference{DonationReceived: true, GoalReached: true}
	if organization.Email == "" {
		return fallback.Allows(notificationType)
	}

	var preference model.NotificationPreference
	findErr := notifier.database.WithContext(ctx).
		First(&preference, "organization_id = ? AND email = ?", organization.ID, organization.Email).Error
	if findErr != nil {
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			notifier.logger.Warn("load_notification_preference", zap.Error(findErr), zap.String("organization_id", organization.ID))
		}
		return fallback.Allows(notificationType)
	}
	return preference.Allows(notificationType)
}

func (notifier *DatabaseDonationNotifier) create(ctx context.Context, organizationID string, notificationType string, title string, body string) error {
	notification, buildErr := model.NewNotification(storage.NewID(), organizationID, notificationType, title, body)
	if buildErr != nil {
		return buildErr
	}
	if createErr := notifier.database.WithContext(ctx).Create(&notification).Error; createErr != nil {
		notifier.logger.Warn("save_notification", zap.Error(createErr), zap.String("organization_id", organizationID))
		return createErr
	}
	return nil
}
