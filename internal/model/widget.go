package model

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	widgetNameMaxLength = 200
	widgetSlugMaxLength = 120
)

var (
	ErrInvalidWidgetOrganization = errors.New("invalid_widget_organization")
	ErrInvalidWidgetName         = errors.New("invalid_widget_name")
	ErrInvalidWidgetSlug         = errors.New("invalid_widget_slug")
	ErrInvalidWidgetConfig       = errors.New("invalid_widget_config")

	widgetSlugExpression = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Widget is the embeddable donation unit owned by one organization and
// addressed by a globally unique slug.
type Widget struct {
	ID             string    `gorm:"primaryKey;size:36"`
	OrganizationID string    `gorm:"index;not null;size:36"`
	Name           string    `gorm:"not null;size:200"`
	Slug           string    `gorm:"uniqueIndex;not null;size:120"`
	ConfigJSON     string    `gorm:"type:text"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// ThemeDocument is the stored shape of a widget theme. Every field is
// optional: records written before a field existed simply omit it and the
// resolver fills the default in.
type ThemeDocument struct {
	PrimaryColor    *string `json:"primaryColor,omitempty"`
	SecondaryColor  *string `json:"secondaryColor,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	TextColor       *string `json:"textColor,omitempty"`
	HeaderColor     *string `json:"headerColor,omitempty"`
	FontFamily      *string `json:"fontFamily,omitempty"`
	BorderRadius    *string `json:"borderRadius,omitempty"`
	CustomCSS       *string `json:"customCss,omitempty"`
	HeaderText      *string `json:"headerText,omitempty"`
	HeaderAlignment *string `json:"headerAlignment,omitempty"`
}

// SettingsDocument is the stored shape of the widget donation settings,
// partial for the same schema-evolution reason as ThemeDocument.
type SettingsDocument struct {
	ShowProgressBar  *bool  `json:"showProgressBar,omitempty"`
	ShowDonorList    *bool  `json:"showDonorList,omitempty"`
	AllowRecurring   *bool  `json:"allowRecurring,omitempty"`
	MinimumDonation  *int64 `json:"minimumDonation,omitempty"`
	SuggestedAmounts []int64 `json:"suggestedAmounts,omitempty"`
	ShowCoverFees    *bool   `json:"showCoverFees,omitempty"`
	DefaultFrequency *string `json:"defaultFrequency,omitempty"`
}

// WidgetConfigDocument is the persisted configuration payload serialized into
// Widget.ConfigJSON.
type WidgetConfigDocument struct {
	Theme    ThemeDocument    `json:"theme"`
	Settings SettingsDocument `json:"settings"`
}

// WidgetInput holds the raw values used to construct a Widget.
type WidgetInput struct {
	ID             string
	OrganizationID string
	Name           string
	Slug           string
	Config         WidgetConfigDocument
	IsActive       bool
}

// NewWidget constructs a Widget with validated, normalized fields.
func NewWidget(input WidgetInput) (Widget, error) {
	organizationID := strings.TrimSpace(input.OrganizationID)
	if organizationID == "" {
		return Widget{}, ErrInvalidWidgetOrganization
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > widgetNameMaxLength {
		return Widget{}, ErrInvalidWidgetName
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if err := ValidateWidgetSlug(slug); err != nil {
		return Widget{}, err
	}

	configJSON, encodeErr := json.Marshal(input.Config)
	if encodeErr != nil {
		return Widget{}, ErrInvalidWidgetConfig
	}

	return Widget{
		ID:             strings.TrimSpace(input.ID),
		OrganizationID: organizationID,
		Name:           name,
		Slug:           slug,
		ConfigJSON:     string(configJSON),
		IsActive:       input.IsActive,
	}, nil
}

// ValidateWidgetSlug enforces the public slug format: lowercase alphanumerics
// separated by single hyphens.
func ValidateWidgetSlug(slug string) error {
	if slug == "" || len(slug) > widgetSlugMaxLength {
		return ErrInvalidWidgetSlug
	}
	if !widgetSlugExpression.MatchString(slug) {
		return ErrInvalidWidgetSlug
	}
	return nil
}

// ConfigDocument decodes the stored configuration payload. A blank or
// malformed payload decodes to an empty document so the resolver can fall
// back to defaults instead of failing a public page.
func (widget Widget) ConfigDocument() WidgetConfigDocument {
	trimmed := strings.TrimSpace(widget.ConfigJSON)
	if trimmed == "" {
		return WidgetConfigDocument{}
	}
	var document WidgetConfigDocument
	if decodeErr := json.Unmarshal([]byte(trimmed), &document); decodeErr != nil {
		return WidgetConfigDocument{}
	}
	return document
}

// SetConfigDocument serializes the configuration payload back onto the widget.
func (widget *Widget) SetConfigDocument(document WidgetConfigDocument) error {
	encoded, encodeErr := json.Marshal(document)
	if encodeErr != nil {
		return ErrInvalidWidgetConfig
	}
	widget.ConfigJSON = string(encoded)
	return nil
}
