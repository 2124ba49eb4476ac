package model

import (
	"errors"
	"strings"
	"time"
)

const (
	// MaxCausesPerWidget caps how many active causes the configuration editor
	// accepts for one widget. The resolver never enforces this.
	MaxCausesPerWidget = 5

	causeNameMaxLength        = 200
	causeDescriptionMaxLength = 2000
)

var (
	ErrInvalidCauseWidget = errors.New("invalid_cause_widget")
	ErrInvalidCauseName   = errors.New("invalid_cause_name")
	ErrInvalidCauseAmount = errors.New("invalid_cause_amount")
)

// Cause is a fundraising target selectable within a widget. Amounts are
// integer cents.
type Cause struct {
	ID           string    `gorm:"primaryKey;size:36"`
	WidgetID     string    `gorm:"index;not null;size:36"`
	Name         string    `gorm:"not null;size:200"`
	Description  string    `gorm:"size:2000"`
	GoalAmount   int64     `gorm:"not null;default:0"`
	RaisedAmount int64     `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	SortOrder    int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// CauseInput holds the raw values used to construct a Cause.
type CauseInput struct {
	ID           string
	WidgetID     string
	Name         string
	Description  string
	GoalAmount   int64
	RaisedAmount int64
	IsActive     bool
	SortOrder    int
}

// NewCause constructs a Cause with validated, normalized fields.
func NewCause(input CauseInput) (Cause, error) {
	widgetID := strings.TrimSpace(input.WidgetID)
	if widgetID == "" {
		return Cause{}, ErrInvalidCauseWidget
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > causeNameMaxLength {
		return Cause{}, ErrInvalidCauseName
	}

	if input.GoalAmount < 0 || input.RaisedAmount < 0 {
		return Cause{}, ErrInvalidCauseAmount
	}

	description := truncateRunes(strings.TrimSpace(input.Description), causeDescriptionMaxLength)

	return Cause{
		ID:           strings.TrimSpace(input.ID),
		WidgetID:     widgetID,
		Name:         name,
		Description:  description,
		GoalAmount:   input.GoalAmount,
		RaisedAmount: input.RaisedAmount,
		IsActive:     input.IsActive,
		SortOrder:    input.SortOrder,
	}, nil
}

// Accrue adds a completed donation amount to the raised total. The total is
// monotonically non-decreasing: non-positive amounts are rejected.
func (cause *Cause) Accrue(amountCents int64) error {
	if amountCents <= 0 {
		return ErrInvalidCauseAmount
	}
	cause.RaisedAmount += amountCents
	return nil
}
