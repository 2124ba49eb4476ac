package widgetcfg

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
)

const (
	// Synthetic widget identity served while an organization has not created
	// a widget yet. The Configured flag distinguishes it from a real widget
	// that happens to use defaults.
	defaultWidgetID   = "default"
	defaultWidgetName = "Default Widget"
	defaultWidgetSlug = "default"

	webhookPathDonations = "/api/webhooks/donations"

	logEventLoadWidget        = "load_widget"
	logEventLoadCauses        = "load_causes"
	logEventLoadOrganization  = "load_organization"
	logFieldOrganizationID    = "organization_id"
	logFieldWidgetSlug        = "widget_slug"
	logFieldWidgetID          = "widget_id"
)

var (
	// ErrOrganizationNotFound is the resolver's only hard failure: without an
	// organization the response would be meaningless.
	ErrOrganizationNotFound = errors.New("organization_not_found")
	// ErrWidgetNotFound covers the slug-keyed public variant: widget absent
	// or not publicly visible.
	ErrWidgetNotFound = errors.New("widget_not_found")
)

// ResolvedCause is the cause shape embedded in a resolved configuration.
type ResolvedCause struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	GoalAmount   int64  `json:"goalAmount,omitempty"`
	RaisedAmount int64  `json:"raisedAmount"`
	IsActive     bool   `json:"isActive"`
}

// ResolvedConfig groups the merged theme, merged settings and cause list.
type ResolvedConfig struct {
	Theme    Theme           `json:"theme"`
	Settings Settings        `json:"settings"`
	Causes   []ResolvedCause `json:"causes"`
}

// ResolvedWidgetConfig is the payload consumed by embeds and widget pages.
// It is a pure function of Widget + Organization + Causes, recomputed on
// every request.
type ResolvedWidgetConfig struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	OrganizationID   string         `json:"organizationId"`
	OrganizationName string         `json:"organizationName"`
	StripeCustomerID string         `json:"stripeCustomerId,omitempty"`
	Configured       bool           `json:"configured"`
	IsActive         bool           `json:"isActive"`
	Config           ResolvedConfig `json:"config"`
	WebhookURL       string         `json:"webhookUrl"`
}

// Resolver assembles ResolvedWidgetConfig values from stored records. It is
// read-only and safe for concurrent use.
type Resolver struct {
	database      *gorm.DB
	logger        *zap.Logger
	publicBaseURL string
}

// NewResolver constructs a Resolver.
func NewResolver(database *gorm.DB, logger *zap.Logger, publicBaseURL string) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		database:      database,
		logger:        logger,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// ResolveByOrganization produces the configuration for an organization's
// widget. The organization must exist; everything else degrades gracefully so
// third-party embeds never see a broken page mid-onboarding: a missing widget
// resolves to the synthetic default, unavailable cause storage resolves to an
// empty cause list.
func (resolver *Resolver) ResolveByOrganization(ctx context.Context, organizationID string) (ResolvedWidgetConfig, error) {
	trimmedOrganizationID := strings.TrimSpace(organizationID)

	var organization model.Organization
	if err := resolver.database.WithContext(ctx).First(&organization, "id = ?", trimmedOrganizationID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			resolver.logger.Warn(logEventLoadOrganization, zap.Error(err), zap.String(logFieldOrganizationID, trimmedOrganizationID))
		}
		return ResolvedWidgetConfig{}, ErrOrganizationNotFound
	}

	var widget model.Widget
	widgetErr := resolver.database.WithContext(ctx).First(&widget, "organization_id = ?", organization.ID).Error
	if widgetErr != nil {
		if !errors.Is(widgetErr, gorm.ErrRecordNotFound) {
			resolver.logger.Warn(logEventLoadWidget, zap.Error(widgetErr), zap.String(logFieldOrganizationID, organization.ID))
		}
		return resolver.assembleDefault(organization), nil
	}

	causes := resolver.loadCauses(ctx, widget.ID, true)
	return resolver.assemble(organization, widget, causes), nil
}

// ResolveBySlug is the public slug-keyed variant: the widget must exist and
// be active, and only active causes are returned.
func (resolver *Resolver) ResolveBySlug(ctx context.Context, slug string) (ResolvedWidgetConfig, error) {
	widget, widgetErr := resolver.findWidgetBySlug(ctx, slug)
	if widgetErr != nil {
		return ResolvedWidgetConfig{}, widgetErr
	}
	if !widget.IsActive {
		return ResolvedWidgetConfig{}, ErrWidgetNotFound
	}

	organization := resolver.loadOrganization(ctx, widget.OrganizationID)
	causes := resolver.loadCauses(ctx, widget.ID, true)
	return resolver.assemble(organization, widget, causes), nil
}

// ResolveBySlugPreview is the authenticated preview variant: the active flag
// is ignored on both the widget and its causes.
func (resolver *Resolver) ResolveBySlugPreview(ctx context.Context, slug string) (ResolvedWidgetConfig, error) {
	widget, widgetErr := resolver.findWidgetBySlug(ctx, slug)
	if widgetErr != nil {
		return ResolvedWidgetConfig{}, widgetErr
	}

	organization := resolver.loadOrganization(ctx, widget.OrganizationID)
	causes := resolver.loadCauses(ctx, widget.ID, false)
	return resolver.assemble(organization, widget, causes), nil
}

// WebhookURL returns the downstream donation notification endpoint advertised
// in every resolved configuration.
func (resolver *Resolver) WebhookURL() string {
	return resolver.publicBaseURL + webhookPathDonations
}

func (resolver *Resolver) findWidgetBySlug(ctx context.Context, slug string) (model.Widget, error) {
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	var widget model.Widget
	if err := resolver.database.WithContext(ctx).First(&widget, "slug = ?", normalizedSlug).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			resolver.logger.Warn(logEventLoadWidget, zap.Error(err), zap.String(logFieldWidgetSlug, normalizedSlug))
		}
		return model.Widget{}, ErrWidgetNotFound
	}
	return widget, nil
}

func (resolver *Resolver) loadOrganization(ctx context.Context, organizationID string) model.Organization {
	var organization model.Organization
	if err := resolver.database.WithContext(ctx).First(&organization, "id = ?", organizationID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			resolver.logger.Warn(logEventLoadOrganization, zap.Error(err), zap.String(logFieldOrganizationID, organizationID))
		}
		return model.Organization{ID: organizationID}
	}
	return organization
}

// loadCauses degrades to an empty list on any storage failure, including the
// causes table not being provisioned yet.
func (resolver *Resolver) loadCauses(ctx context.Context, widgetID string, activeOnly bool) []ResolvedCause {
	query := resolver.database.WithContext(ctx).Where("widget_id = ?", widgetID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var causes []model.Cause
	if err := query.Order("sort_order asc, created_at asc").Find(&causes).Error; err != nil {
		resolver.logger.Warn(logEventLoadCauses, zap.Error(err), zap.String(logFieldWidgetID, widgetID))
		return []ResolvedCause{}
	}

	resolved := make([]ResolvedCause, 0, len(causes))
	for _, cause := range causes {
		resolved = append(resolved, ResolvedCause{
			ID:           cause.ID,
			Name:         cause.Name,
			Description:  cause.Description,
			GoalAmount:   cause.GoalAmount,
			RaisedAmount: cause.RaisedAmount,
			IsActive:     cause.IsActive,
		})
	}
	return resolved
}

func (resolver *Resolver) assemble(organization model.Organization, widget model.Widget, causes []ResolvedCause) ResolvedWidgetConfig {
	document := widget.ConfigDocument()
	return ResolvedWidgetConfig{
		ID:               widget.ID,
		Name:             widget.Name,
		Slug:             widget.Slug,
		OrganizationID:   organization.ID,
		OrganizationName: organization.PublicName(),
		StripeCustomerID: organization.StripeCustomerID,
		Configured:       true,
		IsActive:         widget.IsActive,
		Config: ResolvedConfig{
			Theme:    MergeTheme(document.Theme),
			Settings: MergeSettings(document.Settings),
			Causes:   causes,
		},
		WebhookURL: resolver.WebhookURL(),
	}
}

func (resolver *Resolver) assembleDefault(organization model.Organization) ResolvedWidgetConfig {
	return ResolvedWidgetConfig{
		ID:               defaultWidgetID,
		Name:             defaultWidgetName,
		Slug:             defaultWidgetSlug,
		OrganizationID:   organization.ID,
		OrganizationName: organization.PublicName(),
		StripeCustomerID: organization.StripeCustomerID,
		Configured:       false,
		IsActive:         true,
		Config: ResolvedConfig{
			Theme:    DefaultTheme(),
			Settings: DefaultSettings(),
			Causes:   []ResolvedCause{},
		},
		WebhookURL: resolver.WebhookURL(),
	}
}
