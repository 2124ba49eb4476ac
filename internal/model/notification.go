package model

import (
	"errors"
	"strings"
	"time"
)

const (
	NotificationTypeDonationReceived = "donation_received"
	NotificationTypeGoalReached      = "goal_reached"
	NotificationTypeTeamActivity     = "team_activity"

	notificationTitleMaxLength = 200
	notificationBodyMaxLength  = 2000
)

var ErrInvalidNotification = errors.New("invalid_notification")

// Notification is a dashboard alert row for an organization.
type Notification struct {
	ID             string    `gorm:"primaryKey;size:36"`
	OrganizationID string    `gorm:"index;not null;size:36"`
	Type           string    `gorm:"not null;size:32;index"`
	Title          string    `gorm:"not null;size:200"`
	Body           string    `gorm:"size:2000"`
	Read           bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// NewNotification constructs a Notification with validated, normalized fields.
func NewNotification(id string, organizationID string, notificationType string, title string, body string) (Notification, error) {
	trimmedOrganizationID := strings.TrimSpace(organizationID)
	trimmedType := strings.TrimSpace(notificationType)
	trimmedTitle := strings.TrimSpace(title)
	if trimmedOrganizationID == "" || trimmedType == "" || trimmedTitle == "" {
		return Notification{}, ErrInvalidNotification
	}
	trimmedTitle = truncateRunes(trimmedTitle, notificationTitleMaxLength)
	trimmedBody := truncateRunes(strings.TrimSpace(body), notificationBodyMaxLength)
	return Notification{
		ID:             strings.TrimSpace(id),
		OrganizationID: trimmedOrganizationID,
		Type:           trimmedType,
		Title:          trimmedTitle,
		Body:           trimmedBody,
	}, nil
}

// NotificationPreference toggles which events produce notifications for one
// recipient within an organization.
type NotificationPreference struct {
	ID               string    `gorm:"primaryKey;size:36"`
	OrganizationID   string    `gorm:"not null;size:36;uniqueIndex:idx_notification_prefs_org_email"`
	Email            string    `gorm:"not null;size:320;uniqueIndex:idx_notification_prefs_org_email"`
	DonationReceived bool      `gorm:"not null;default:true"`
	GoalReached      bool      `gorm:"not null;default:true"`
	TeamActivity     bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// Allows reports whether the preference admits the given notification type.
func (preference NotificationPreference) Allows(notificationType string) bool {
	switch notificationType {
	case NotificationTypeDonationReceived:
		return preference.DonationReceived
	case NotificationTypeGoalReached:
		return preference.GoalReached
	case NotificationTypeTeamActivity:
		return preference.TeamActivity
	default:
		return false
	}
}
