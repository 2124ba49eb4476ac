package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	organizationNameMaxLength        = 200
	organizationDisplayNameMaxLength = 200
	organizationEmailMaxLength       = 320
)

var (
	ErrInvalidOrganizationName  = errors.New("invalid_organization_name")
	ErrInvalidOrganizationEmail = errors.New("invalid_organization_email")
)

// Organization is the tenant that owns a donation widget.
type Organization struct {
	ID                  string    `gorm:"primaryKey;size:36"`
	Name                string    `gorm:"not null;size:200"`
	DisplayName         string    `gorm:"size:200"`
	Email               string    `gorm:"size:320"`
	StripeCustomerID    string    `gorm:"size:64"`
	OnboardingCompleted bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// OrganizationInput holds the raw values used to construct an Organization.
type OrganizationInput struct {
	ID               string
	Name             string
	DisplayName      string
	Email            string
	StripeCustomerID string
}

// NewOrganization constructs an Organization with validated, normalized fields.
func NewOrganization(input OrganizationInput) (Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > organizationNameMaxLength {
		return Organization{}, ErrInvalidOrganizationName
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = name
	}
	if len(displayName) > organizationDisplayNameMaxLength {
		return Organization{}, ErrInvalidOrganizationName
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" {
		if len(email) > organizationEmailMaxLength {
			return Organization{}, ErrInvalidOrganizationEmail
		}
		if _, parseErr := mail.ParseAddress(email); parseErr != nil {
			return Organization{}, ErrInvalidOrganizationEmail
		}
	}

	return Organization{
		ID:               strings.TrimSpace(input.ID),
		Name:             name,
		DisplayName:      displayName,
		Email:            email,
		StripeCustomerID: strings.TrimSpace(input.StripeCustomerID),
	}, nil
}

// PublicName returns the name shown on public donation pages.
func (organization Organization) PublicName() string {
	if strings.TrimSpace(organization.DisplayName) != "" {
		return organization.DisplayName
	}
	return organization.Name
}
