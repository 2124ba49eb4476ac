package storage

import (
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
)

// AutoMigrate runs database migrations for the storage layer models.
func AutoMigrate(database *gorm.DB) error {
	migrateErr := database.AutoMigrate(
		&model.Organization{},
		&model.Widget{},
		&model.Cause{},
		&model.Donation{},
		&model.TeamInvitation{},
		&model.Notification{},
		&model.NotificationPreference{},
	)
	if migrateErr != nil {
		return migrateErr
	}
	return backfillInvitationStatuses(database)
}

// Historical invitations stored free-text statuses (or none at all) and the
// dashboard inferred "pending" from the token shape. The enum column is the
// only source of truth now, so blank rows are normalized on startup.
func backfillInvitationStatuses(database *gorm.DB) error {
	assignments := map[string]any{
		"status": string(model.InvitationStatusPending),
	}

	return database.Model(&model.TeamInvitation{}).
		Where("status IS NULL OR TRIM(status) = ''").
		Updates(assignments).Error
}
