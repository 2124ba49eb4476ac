package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinimumDonationAmountCents is the floor applied to every submission
	// regardless of widget settings.
	MinimumDonationAmountCents = 100

	DonationFrequencyOneTime = "one-time"
	DonationFrequencyMonthly = "monthly"
	DonationFrequencyYearly  = "yearly"

	DonationStatusPending   = "pending"
	DonationStatusCompleted = "completed"

	donorNameMaxLength  = 200
	donorEmailMaxLength = 320
)

var (
	ErrInvalidDonationWidget    = errors.New("invalid_donation_widget")
	ErrInvalidDonationAmount    = errors.New("invalid_donation_amount")
	ErrInvalidDonationFrequency = errors.New("invalid_donation_frequency")
)

// Donation records a submission handed off to the payment provider. The
// charge itself happens elsewhere; the record transitions from pending to
// completed when the payment webhook reports back.
type Donation struct {
	ID         string    `gorm:"primaryKey;size:36"`
	WidgetID   string    `gorm:"index;not null;size:36"`
	CauseID    string    `gorm:"index;size:36"`
	Amount     int64     `gorm:"not null"`
	Frequency  string    `gorm:"not null;size:16"`
	DonorName  string    `gorm:"size:200"`
	DonorEmail string    `gorm:"size:320"`
	Status     string    `gorm:"not null;size:16;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// DonationInput holds the raw values used to construct a Donation.
type DonationInput struct {
	ID         string
	WidgetID   string
	CauseID    string
	Amount     int64
	Frequency  string
	DonorName  string
	DonorEmail string
}

// NewDonation constructs a pending Donation with validated, normalized fields.
func NewDonation(input DonationInput) (Donation, error) {
	widgetID := strings.TrimSpace(input.WidgetID)
	if widgetID == "" {
		return Donation{}, ErrInvalidDonationWidget
	}

	if input.Amount < MinimumDonationAmountCents {
		return Donation{}, ErrInvalidDonationAmount
	}

	frequency := strings.TrimSpace(input.Frequency)
	if frequency == "" {
		frequency = DonationFrequencyOneTime
	}
	if err := ValidateDonationFrequency(frequency); err != nil {
		return Donation{}, err
	}

	return Donation{
		ID:         strings.TrimSpace(input.ID),
		WidgetID:   widgetID,
		CauseID:    strings.TrimSpace(input.CauseID),
		Amount:     input.Amount,
		Frequency:  frequency,
		DonorName:  truncateRunes(strings.TrimSpace(input.DonorName), donorNameMaxLength),
		DonorEmail: truncateRunes(strings.ToLower(strings.TrimSpace(input.DonorEmail)), donorEmailMaxLength),
		Status:     DonationStatusPending,
	}, nil
}

// ValidateDonationFrequency checks a frequency against the supported set.
func ValidateDonationFrequency(frequency string) error {
	switch frequency {
	case DonationFrequencyOneTime, DonationFrequencyMonthly, DonationFrequencyYearly:
		return nil
	default:
		return ErrInvalidDonationFrequency
	}
}

// truncateRunes caps input at max bytes, backing the cut off to the previous
// rune boundary so truncation never produces invalid UTF-8.
func truncateRunes(input string, max int) string {
	if len(input) <= max {
		return input
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}
