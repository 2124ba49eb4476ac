package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

const (
	errorValueInvalidRequest    = "invalid_request"
	errorValueNotFound          = "not_found"
	errorValueSlugTaken         = "slug_taken"
	errorValueWidgetExists      = "widget_exists"
	errorValueTooManyCauses     = "too_many_causes"
	errorValueListFailed        = "list_failed"
	errorValueOrganizationEmpty = "missing_organization"

	jsonKeyStatus = "status"
	statusValueOK = "ok"
)

// AdminHandlers serves the bearer-guarded JSON API the dashboard and
// provisioning tooling talk to: organization, widget and cause management
// plus read access to donations.
type AdminHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
	resolver *widgetcfg.Resolver
}

// NewAdminHandlers constructs AdminHandlers.
func NewAdminHandlers(database *gorm.DB, logger *zap.Logger, resolver *widgetcfg.Resolver) *AdminHandlers {
	return &AdminHandlers{database: database, logger: logger, resolver: resolver}
}

type createOrganizationRequest struct {
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	Email            string `json:"email"`
	StripeCustomerID string `json:"stripeCustomerId"`
}

// CreateOrganization handles POST /api/admin/organizations.
func (h *AdminHandlers) CreateOrganization(context *gin.Context) {
	var payload createOrganizationRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	organization, buildErr := model.NewOrganization(model.OrganizationInput{
		ID:               storage.NewID(),
		Name:             payload.Name,
		DisplayName:      payload.DisplayName,
		Email:            payload.Email,
		StripeCustomerID: payload.StripeCustomerID,
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: buildErr.Error()})
		return
	}

	if createErr := h.database.WithContext(context.Request.Context()).Create(&organization).Error; createErr != nil {
		h.logger.Warn("save_organization", zap.Error(createErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusCreated, organization)
}

// ListOrganizations handles GET /api/admin/organizations.
func (h *AdminHandlers) ListOrganizations(context *gin.Context) {
	var organizations []model.Organization
	if listErr := h.database.WithContext(context.Request.Context()).
		Order("created_at asc").Find(&organizations).Error; listErr != nil {
		h.logger.Warn("list_organizations", zap.Error(listErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, organizations)
}

// GetOrganization handles GET /api/admin/organizations/:orgId.
func (h *AdminHandlers) GetOrganization(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	var organization model.Organization
	if findErr := h.database.WithContext(context.Request.Context()).
		First(&organization, "id = ?", organizationID).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueNotFound})
		return
	}
	context.JSON(http.StatusOK, organization)
}

type updateOrganizationRequest struct {
	DisplayName         *string `json:"displayName"`
	Email               *string `json:"email"`
	StripeCustomerID    *string `json:"stripeCustomerId"`
	OnboardingCompleted *bool   `json:"onboardingCompleted"`
}

// UpdateOrganization handles PATCH /api/admin/organizations/:orgId. Absent
// fields are left alone.
func (h *AdminHandlers) UpdateOrganization(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	var organization model.Organization
	if findErr := h.database.WithContext(context.Request.Context()).
		First(&organization, "id = ?", organizationID).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueNotFound})
		return
	}

	var payload updateOrganizationRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	if payload.DisplayName != nil {
		organization.DisplayName = strings.TrimSpace(*payload.DisplayName)
	}
	if payload.Email != nil {
		organization.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.StripeCustomerID != nil {
		organization.StripeCustomerID = strings.TrimSpace(*payload.StripeCustomerID)
	}
	if payload.OnboardingCompleted != nil {
		organization.OnboardingCompleted = *payload.OnboardingCompleted
	}

	if saveErr := h.database.WithContext(context.Request.Context()).Save(&organization).Error; saveErr != nil {
		h.logger.Warn("save_organization", zap.Error(saveErr), zap.String("organization_id", organizationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusOK, organization)
}

type createWidgetRequest struct {
	OrganizationID string                     `json:"organizationId"`
	Name           string                     `json:"name"`
	Slug           string                     `json:"slug"`
	Config         model.WidgetConfigDocument `json:"config"`
	IsActive       *bool                      `json:"isActive"`
}

// CreateWidget handles POST /api/admin/widgets. Each organization owns at
// most one widget; the slug must be unique across all tenants.
func (h *AdminHandlers) CreateWidget(context *gin.Context) {
	var payload createWidgetRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	organizationID := strings.TrimSpace(payload.OrganizationID)
	if organizationID == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueOrganizationEmpty})
		return
	}

	requestContext := context.Request.Context()

	var organization model.Organization
	if findErr := h.database.WithContext(requestContext).
		First(&organization, "id = ?", organizationID).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueOrganizationNotFound})
		return
	}

	var existingCount int64
	if countErr := h.database.WithContext(requestContext).Model(&model.Widget{}).
		Where("organization_id = ?", organizationID).Count(&existingCount).Error; countErr != nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	if existingCount > 0 {
		context.JSON(http.StatusConflict, gin.H{jsonKeyError: errorValueWidgetExists})
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	widget, buildErr := model.NewWidget(model.WidgetInput{
		ID:             storage.NewID(),
		OrganizationID: organizationID,
		Name:           payload.Name,
		Slug:           payload.Slug,
		Config:         payload.Config,
		IsActive:       isActive,
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: buildErr.Error()})
		return
	}

	var slugCount int64
	if countErr := h.database.WithContext(requestContext).Model(&model.Widget{}).
		Where("slug = ?", widget.Slug).Count(&slugCount).Error; countErr != nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	if slugCount > 0 {
		context.JSON(http.StatusConflict, gin.H{jsonKeyError: errorValueSlugTaken})
		return
	}

	if createErr := h.database.WithContext(requestContext).Create(&widget).Error; createErr != nil {
		h.logger.Warn("save_widget", zap.Error(createErr), zap.String("organization_id", organizationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusCreated, widget)
}

type updateWidgetRequest struct {
	Name     *string                     `json:"name"`
	Config   *model.WidgetConfigDocument `json:"config"`
	IsActive *bool                       `json:"isActive"`
}

// UpdateWidget handles PATCH /api/admin/widgets/:widgetId. The slug is
// immutable once issued; embeds in the wild reference it.
func (h *AdminHandlers) UpdateWidget(context *gin.Context) {
	widgetID := strings.TrimSpace(context.Param("widgetId"))

	var widget model.Widget
	if findErr := h.database.WithContext(context.Request.Context()).
		First(&widget, "id = ?", widgetID).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWidgetNotFound})
		return
	}

	var payload updateWidgetRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	if payload.Name != nil {
		trimmedName := strings.TrimSpace(*payload.Name)
		if trimmedName == "" {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: model.ErrInvalidWidgetName.Error()})
			return
		}
		widget.Name = trimmedName
	}
	if payload.Config != nil {
		if setErr := widget.SetConfigDocument(*payload.Config); setErr != nil {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: setErr.Error()})
			return
		}
	}
	if payload.IsActive != nil {
		widget.IsActive = *payload.IsActive
	}

	if saveErr := h.database.WithContext(context.Request.Context()).Save(&widget).Error; saveErr != nil {
		h.logger.Warn("save_widget", zap.Error(saveErr), zap.String("widget_id", widgetID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusOK, widget)
}

// ListWidgets handles GET /api/admin/widgets.
func (h *AdminHandlers) ListWidgets(context *gin.Context) {
	var widgets []model.Widget
	if listErr := h.database.WithContext(context.Request.Context()).
		Order("created_at asc").Find(&widgets).Error; listErr != nil {
		h.logger.Warn("list_widgets", zap.Error(listErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, widgets)
}

// WidgetConfigBySlug handles GET /api/admin/widgets/by-slug/:slug/config,
// returning the resolved configuration with inactive records included. The
// dashboard editor uses it to show the exact payload embeds will receive.
func (h *AdminHandlers) WidgetConfigBySlug(context *gin.Context) {
	slug := strings.TrimSpace(context.Param("slug"))

	resolved, resolveErr := h.resolver.ResolveBySlugPreview(context.Request.Context(), slug)
	if resolveErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWidgetNotFound})
		return
	}
	context.JSON(http.StatusOK, resolved)
}

type createCauseRequest struct {
	WidgetID    string `json:"widgetId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GoalAmount  int64  `json:"goalAmount"`
	SortOrder   int    `json:"sortOrder"`
}

// CreateCause handles POST /api/admin/causes. Active causes are capped per
// widget so donation pages stay legible.
func (h *AdminHandlers) CreateCause(context *gin.Context) {
	var payload createCauseRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	requestContext := context.Request.Context()

	var widget model.Widget
	if findErr := h.database.WithContext(requestContext).
		First(&widget, "id = ?", strings.TrimSpace(payload.WidgetID)).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWidgetNotFound})
		return
	}

	var activeCount int64
	if countErr := h.database.WithContext(requestContext).Model(&model.Cause{}).
		Where("widget_id = ? AND is_active = ?", widget.ID, true).Count(&activeCount).Error; countErr != nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	if activeCount >= model.MaxCausesPerWidget {
		context.JSON(http.StatusConflict, gin.H{jsonKeyError: errorValueTooManyCauses})
		return
	}

	cause, buildErr := model.NewCause(model.CauseInput{
		ID:          storage.NewID(),
		WidgetID:    widget.ID,
		Name:        payload.Name,
		Description: payload.Description,
		GoalAmount:  payload.GoalAmount,
		IsActive:    true,
		SortOrder:   payload.SortOrder,
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: buildErr.Error()})
		return
	}

	if createErr := h.database.WithContext(requestContext).Create(&cause).Error; createErr != nil {
		h.logger.Warn("save_cause", zap.Error(createErr), zap.String("widget_id", widget.ID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusCreated, cause)
}

type updateCauseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	GoalAmount  *int64  `json:"goalAmount"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// UpdateCause handles PATCH /api/admin/causes/:causeId. Reactivating a cause
// re-checks the per-widget cap.
func (h *AdminHandlers) UpdateCause(context *gin.Context) {
	causeID := strings.TrimSpace(context.Param("causeId"))
	requestContext := context.Request.Context()

	var cause model.Cause
	if findErr := h.database.WithContext(requestContext).
		First(&cause, "id = ?", causeID).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueNotFound})
		return
	}

	var payload updateCauseRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	if payload.Name != nil {
		trimmedName := strings.TrimSpace(*payload.Name)
		if trimmedName == "" {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: model.ErrInvalidCauseName.Error()})
			return
		}
		cause.Name = trimmedName
	}
	if payload.Description != nil {
		cause.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.GoalAmount != nil {
		if *payload.GoalAmount < 0 {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: model.ErrInvalidCauseAmount.Error()})
			return
		}
		cause.GoalAmount = *payload.GoalAmount
	}
	if payload.SortOrder != nil {
		cause.SortOrder = *payload.SortOrder
	}
	if payload.IsActive != nil && *payload.IsActive != cause.IsActive {
		if *payload.IsActive {
			var activeCount int64
			if countErr := h.database.WithContext(requestContext).Model(&model.Cause{}).
				Where("widget_id = ? AND is_active = ? AND id <> ?", cause.WidgetID, true, cause.ID).
				Count(&activeCount).Error; countErr != nil {
				context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
				return
			}
			if activeCount >= model.MaxCausesPerWidget {
				context.JSON(http.StatusConflict, gin.H{jsonKeyError: errorValueTooManyCauses})
				return
			}
		}
		cause.IsActive = *payload.IsActive
	}

	if saveErr := h.database.WithContext(requestContext).Save(&cause).Error; saveErr != nil {
		h.logger.Warn("save_cause", zap.Error(saveErr), zap.String("cause_id", causeID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusOK, cause)
}

// DeleteCause handles DELETE /api/admin/causes/:causeId.
func (h *AdminHandlers) DeleteCause(context *gin.Context) {
	causeID := strings.TrimSpace(context.Param("causeId"))

	result := h.database.WithContext(context.Request.Context()).
		Delete(&model.Cause{}, "id = ?", causeID)
	if result.Error != nil {
		h.logger.Warn("delete_cause", zap.Error(result.Error), zap.String("cause_id", causeID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	if result.RowsAffected == 0 {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueNotFound})
		return
	}
	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

// ListCauses handles GET /api/admin/widgets/:widgetId/causes. Unlike the
// resolver this view is unfiltered: inactive causes stay visible so the editor
// can reactivate them.
func (h *AdminHandlers) ListCauses(context *gin.Context) {
	widgetID := strings.TrimSpace(context.Param("widgetId"))

	var causes []model.Cause
	if listErr := h.database.WithContext(context.Request.Context()).
		Where("widget_id = ?", widgetID).
		Order("sort_order asc").Find(&causes).Error; listErr != nil {
		h.logger.Warn("list_causes", zap.Error(listErr), zap.String("widget_id", widgetID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, causes)
}

// ListDonations handles GET /api/admin/widgets/:widgetId/donations.
func (h *AdminHandlers) ListDonations(context *gin.Context) {
	widgetID := strings.TrimSpace(context.Param("widgetId"))

	var donations []model.Donation
	if listErr := h.database.WithContext(context.Request.Context()).
		Where("widget_id = ?", widgetID).
		Order("created_at desc").Find(&donations).Error; listErr != nil {
		h.logger.Warn("list_donations", zap.Error(listErr), zap.String("widget_id", widgetID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, donations)
}

// widgetForOrganization loads the single widget owned by an organization.
func (h *AdminHandlers) widgetForOrganization(context *gin.Context, organizationID string) (model.Widget, bool) {
	var widget model.Widget
	if findErr := h.database.WithContext(context.Request.Context()).
		First(&widget, "organization_id = ?", organizationID).Error; findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWidgetNotFound})
		} else {
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		}
		return model.Widget{}, false
	}
	return widget, true
}

// GetOrganizationWidget handles GET /api/admin/organizations/:orgId/widget.
func (h *AdminHandlers) GetOrganizationWidget(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))
	widget, ok := h.widgetForOrganization(context, organizationID)
	if !ok {
		return
	}
	context.JSON(http.StatusOK, widget)
}
