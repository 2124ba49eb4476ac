package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/embed"
	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

const (
	jsonKeyError = "error"

	errorValueInvalidJSON          = "invalid_json"
	errorValueOrganizationNotFound = "organization_not_found"
	errorValueWidgetNotFound       = "widget_not_found"
	errorValueInvalidAmount        = "invalid_amount"
	errorValueAmountBelowMinimum   = "amount_below_minimum"
	errorValueMissingCause         = "missing_cause"
	errorValueUnknownCause         = "unknown_cause"
	errorValueInvalidFrequency     = "invalid_frequency"
	errorValueRecurringDisabled    = "recurring_disabled"
	errorValueSaveFailed           = "save_failed"
	errorValueMissingSlug          = "missing_slug"
	errorValueInvalidStyle         = "invalid_style"
	errorValueRenderFailed         = "render_failed"

	contentTypeJavaScript = "application/javascript; charset=utf-8"
	contentTypeHTML       = "text/html; charset=utf-8"
)

// PublicHandlers serves the unauthenticated surface consumed by third-party
// host pages: the resolver endpoint, the widget page, the embed script, the
// server-side embed markup expansion, and donation submission.
type PublicHandlers struct {
	database      *gorm.DB
	logger        *zap.Logger
	resolver      *widgetcfg.Resolver
	publicBaseURL string
}

// NewPublicHandlers constructs PublicHandlers.
func NewPublicHandlers(database *gorm.DB, logger *zap.Logger, resolver *widgetcfg.Resolver, publicBaseURL string) *PublicHandlers {
	return &PublicHandlers{
		database:      database,
		logger:        logger,
		resolver:      resolver,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// WidgetConfig handles GET /widget-config/:orgId. The route sits behind
// wildcard CORS because arbitrary host pages call it cross-origin.
func (h *PublicHandlers) WidgetConfig(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	resolved, resolveErr := h.resolver.ResolveByOrganization(context.Request.Context(), organizationID)
	if resolveErr != nil {
		if errors.Is(resolveErr, widgetcfg.ErrOrganizationNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueOrganizationNotFound})
			return
		}
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueRenderFailed})
		return
	}

	context.JSON(http.StatusOK, resolved)
}

// EmbedScript handles GET /embed/passiton-embed.js.
func (h *PublicHandlers) EmbedScript(context *gin.Context) {
	var buffer bytes.Buffer
	if executeErr := embedJavaScriptTemplate.Execute(&buffer, map[string]any{
		"BaseURL": h.publicBaseURL,
	}); executeErr != nil {
		context.String(http.StatusInternalServerError, "/* render error */")
		return
	}
	context.Data(http.StatusOK, contentTypeJavaScript, buffer.Bytes())
}

// EmbedMarkup handles GET /embed/markup?slug=...&style=..., the server-side
// expansion the WordPress and Drupal adapters call when a page is rendered on
// their side of the fence.
func (h *PublicHandlers) EmbedMarkup(context *gin.Context) {
	slug := strings.TrimSpace(context.Query("slug"))
	if slug == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingSlug})
		return
	}

	style, styleErr := embed.ParseStyle(context.Query("style"))
	if styleErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidStyle})
		return
	}

	markup, renderErr := embed.Render(slug, embed.Options{
		Style:      style,
		Width:      context.Query("width"),
		Height:     context.Query("height"),
		ButtonText: context.Query("button_text"),
		BaseURL:    h.publicBaseURL,
	})
	if renderErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidStyle})
		return
	}

	context.Data(http.StatusOK, contentTypeHTML, []byte(markup))
}

// WidgetPage handles GET /widget/:slug, the page embed iframes point at.
func (h *PublicHandlers) WidgetPage(context *gin.Context) {
	slug := strings.TrimSpace(context.Param("slug"))

	resolved, resolveErr := h.resolver.ResolveBySlug(context.Request.Context(), slug)
	if resolveErr != nil {
		renderWidgetNotFound(context)
		return
	}

	renderWidgetPage(context, resolved, false)
}

type submitDonationRequest struct {
	Amount     int64  `json:"amount"`
	CauseID    string `json:"causeId"`
	Frequency  string `json:"frequency"`
	DonorName  string `json:"donorName"`
	DonorEmail string `json:"donorEmail"`
}

// SubmitDonation handles POST /api/widget/:slug/donations. Validation
// mirrors the widget page's inline checks; success records a pending
// donation and hands the reference to the external payment provider.
func (h *PublicHandlers) SubmitDonation(context *gin.Context) {
	slug := strings.TrimSpace(context.Param("slug"))

	resolved, resolveErr := h.resolver.ResolveBySlug(context.Request.Context(), slug)
	if resolveErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWidgetNotFound})
		return
	}

	var payload submitDonationRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	if payload.Amount < model.MinimumDonationAmountCents {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidAmount})
		return
	}
	if payload.Amount < resolved.Config.Settings.MinimumDonation {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueAmountBelowMinimum})
		return
	}

	frequency := strings.TrimSpace(payload.Frequency)
	if frequency == "" {
		frequency = resolved.Config.Settings.DefaultFrequency
	}
	if model.ValidateDonationFrequency(frequency) != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidFrequency})
		return
	}
	if frequency != model.DonationFrequencyOneTime && !resolved.Config.Settings.AllowRecurring {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueRecurringDisabled})
		return
	}

	causeID := strings.TrimSpace(payload.CauseID)
	activeCauses := resolved.Config.Causes
	if causeID == "" {
		if len(activeCauses) > 1 {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingCause})
			return
		}
		if len(activeCauses) == 1 {
			causeID = activeCauses[0].ID
		}
	} else if !containsCause(activeCauses, causeID) {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueUnknownCause})
		return
	}

	donation, buildErr := model.NewDonation(model.DonationInput{
		ID:         storage.NewID(),
		WidgetID:   resolved.ID,
		CauseID:    causeID,
		Amount:     payload.Amount,
		Frequency:  frequency,
		DonorName:  payload.DonorName,
		DonorEmail: payload.DonorEmail,
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidAmount})
		return
	}

	if createErr := h.database.WithContext(context.Request.Context()).Create(&donation).Error; createErr != nil {
		h.logger.Warn("save_donation", zap.Error(createErr), zap.String("widget_id", resolved.ID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"donation_id": donation.ID,
		"webhook_url": resolved.WebhookURL,
	})
}

func containsCause(causes []widgetcfg.ResolvedCause, causeID string) bool {
	for _, cause := range causes {
		if cause.ID == causeID {
			return true
		}
	}
	return false
}

type widgetPageData struct {
	OrganizationName   string
	Theme              widgetcfg.Theme
	CustomCSS          htmltemplate.CSS
	ConfigJSON         htmltemplate.JS
	DonatePath         string
	Preview            bool
	ShowInactiveBanner bool
}

func renderWidgetPage(context *gin.Context, resolved widgetcfg.ResolvedWidgetConfig, preview bool) {
	encoded, encodeErr := json.Marshal(resolved)
	if encodeErr != nil {
		context.String(http.StatusInternalServerError, "render error")
		return
	}

	showInactiveBanner := false
	if preview {
		if !resolved.IsActive {
			showInactiveBanner = true
		}
		for _, cause := range resolved.Config.Causes {
			if !cause.IsActive {
				showInactiveBanner = true
			}
		}
	}

	data := widgetPageData{
		OrganizationName:   resolved.OrganizationName,
		Theme:              resolved.Config.Theme,
		CustomCSS:          htmltemplate.CSS(resolved.Config.Theme.CustomCSS),
		ConfigJSON:         htmltemplate.JS(encoded),
		DonatePath:         fmt.Sprintf("/api/widget/%s/donations", resolved.Slug),
		Preview:            preview,
		ShowInactiveBanner: showInactiveBanner,
	}

	var buffer bytes.Buffer
	if executeErr := widgetPageTemplate.Execute(&buffer, data); executeErr != nil {
		context.String(http.StatusInternalServerError, "render error")
		return
	}
	context.Data(http.StatusOK, contentTypeHTML, buffer.Bytes())
}

func renderWidgetNotFound(context *gin.Context) {
	var buffer bytes.Buffer
	if executeErr := widgetNotFoundTemplate.Execute(&buffer, nil); executeErr != nil {
		context.String(http.StatusNotFound, "widget not found")
		return
	}
	context.Data(http.StatusNotFound, contentTypeHTML, buffer.Bytes())
}
