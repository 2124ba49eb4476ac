package task

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
)

// InvitationExpiryJob marks pending team invitations past their window as
// expired. Redemption also checks expiry at read time, so the sweep exists to
// keep dashboard listings and counts honest between redemption attempts.
type InvitationExpiryJob struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewInvitationExpiryJob builds an InvitationExpiryJob.
func NewInvitationExpiryJob(database *gorm.DB, logger *zap.Logger) *InvitationExpiryJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvitationExpiryJob{database: database, logger: logger}
}

// Run expires every pending invitation whose window has closed.
func (job *InvitationExpiryJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	result := job.database.WithContext(ctx).
		Model(&model.TeamInvitation{}).
		Where("status = ? AND expires_at < ?", model.InvitationStatusPending, now).
		Update("status", model.InvitationStatusExpired)
	if result.Error != nil {
		job.logger.Warn("invitation_expiry_sweep", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		job.logger.Info("invitation_expiry_sweep", zap.Int64("expired", result.RowsAffected))
	}
	return nil
}
