package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// InvitationStatus is the explicit lifecycle state of a team invitation.
// Earlier revisions stored free-text status strings and inferred "pending"
// from a token prefix; the enum is now the single source of truth.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"

	TeamRoleOwner  = "owner"
	TeamRoleEditor = "editor"

	// DefaultInvitationTTL is how long a pending invitation stays redeemable.
	DefaultInvitationTTL = 7 * 24 * time.Hour

	invitationEmailMaxLength = 320
)

var (
	ErrInvalidInvitationOrganization = errors.New("invalid_invitation_organization")
	ErrInvalidInvitationEmail        = errors.New("invalid_invitation_email")
	ErrInvalidInvitationRole         = errors.New("invalid_invitation_role")
	ErrInvitationNotPending          = errors.New("invitation_not_pending")
	ErrInvitationExpired             = errors.New("invitation_expired")
)

// TeamInvitation invites an email address into an organization with a role.
type TeamInvitation struct {
	ID             string           `gorm:"primaryKey;size:36"`
	OrganizationID string           `gorm:"index;not null;size:36"`
	Email          string           `gorm:"not null;size:320;index"`
	Role           string           `gorm:"not null;size:16"`
	Token          string           `gorm:"uniqueIndex;not null;size:64"`
	Status         InvitationStatus `gorm:"not null;size:16;index"`
	ExpiresAt      time.Time        `gorm:"not null"`
	AcceptedAt     time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TeamInvitationInput holds the raw values used to construct a TeamInvitation.
type TeamInvitationInput struct {
	ID             string
	OrganizationID string
	Email          string
	Role           string
	Token          string
	IssuedAt       time.Time
	TTL            time.Duration
}

// NewTeamInvitation constructs a pending TeamInvitation with validated fields.
func NewTeamInvitation(input TeamInvitationInput) (TeamInvitation, error) {
	organizationID := strings.TrimSpace(input.OrganizationID)
	if organizationID == "" {
		return TeamInvitation{}, ErrInvalidInvitationOrganization
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || len(email) > invitationEmailMaxLength {
		return TeamInvitation{}, ErrInvalidInvitationEmail
	}
	if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		return TeamInvitation{}, ErrInvalidInvitationEmail
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = TeamRoleEditor
	}
	if role != TeamRoleOwner && role != TeamRoleEditor {
		return TeamInvitation{}, ErrInvalidInvitationRole
	}

	issuedAt := input.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	return TeamInvitation{
		ID:             strings.TrimSpace(input.ID),
		OrganizationID: organizationID,
		Email:          email,
		Role:           role,
		Token:          strings.TrimSpace(input.Token),
		Status:         InvitationStatusPending,
		ExpiresAt:      issuedAt.Add(ttl),
	}, nil
}

// Accept transitions a pending invitation to accepted at the given time.
func (invitation *TeamInvitation) Accept(now time.Time) error {
	if invitation.Status != InvitationStatusPending {
		return ErrInvitationNotPending
	}
	if now.After(invitation.ExpiresAt) {
		return ErrInvitationExpired
	}
	invitation.Status = InvitationStatusAccepted
	invitation.AcceptedAt = now
	return nil
}

// IsExpired reports whether a pending invitation has outlived its window.
func (invitation TeamInvitation) IsExpired(now time.Time) bool {
	return invitation.Status == InvitationStatusPending && now.After(invitation.ExpiresAt)
}
