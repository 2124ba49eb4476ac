package httpapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/widgetcfg"
)

func TestWidgetConfigMergesStoredOverridesOverDefaults(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "Helping Hands")
	widget := insertWidget(t, api.database, organization.ID, "helping-hands", model.WidgetConfigDocument{
		Theme: model.ThemeDocument{
			PrimaryColor: stringPointer("#ff0000"),
		},
		Settings: model.SettingsDocument{
			MinimumDonation: int64Pointer(500),
		},
	}, true)
	cause := insertCause(t, api.database, widget.ID, "Clean Water", 100000, true)

	response := performJSONRequest(t, api.router, http.MethodGet, "/widget-config/"+organization.ID, nil, nil)
	require.Equal(t, http.StatusOK, response.Code)

	var resolved widgetcfg.ResolvedWidgetConfig
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resolved))

	require.Equal(t, widget.ID, resolved.ID)
	require.Equal(t, "helping-hands", resolved.Slug)
	require.Equal(t, "Helping Hands", resolved.OrganizationName)
	require.True(t, resolved.Configured)

	require.Equal(t, "#ff0000", resolved.Config.Theme.PrimaryColor)
	require.Equal(t, "#e6f2ff", resolved.Config.Theme.SecondaryColor)
	require.Equal(t, "inter", resolved.Config.Theme.FontFamily)
	require.Equal(t, "8px", resolved.Config.Theme.BorderRadius)

	require.Equal(t, int64(500), resolved.Config.Settings.MinimumDonation)
	require.Equal(t, []int64{1000, 2500, 5000, 10000}, resolved.Config.Settings.SuggestedAmounts)

	require.Len(t, resolved.Config.Causes, 1)
	require.Equal(t, cause.ID, resolved.Config.Causes[0].ID)

	require.Equal(t, testPublicBaseURL+"/api/webhooks/donations", resolved.WebhookURL)
}

func TestWidgetConfigUnknownOrganizationReturnsNotFound(t *testing.T) {
	api := buildAPIHarness(t)

	response := performJSONRequest(t, api.router, http.MethodGet, "/widget-config/no-such-org", nil, nil)
	require.Equal(t, http.StatusNotFound, response.Code)
	require.Contains(t, response.Body.String(), "organization_not_found")
}

func TestWidgetConfigWithoutWidgetServesSyntheticDefault(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "Fresh Tenant")

	response := performJSONRequest(t, api.router, http.MethodGet, "/widget-config/"+organization.ID, nil, nil)
	require.Equal(t, http.StatusOK, response.Code)

	var resolved widgetcfg.ResolvedWidgetConfig
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resolved))

	require.Equal(t, "default", resolved.ID)
	require.Equal(t, "Default Widget", resolved.Name)
	require.Equal(t, "default", resolved.Slug)
	require.False(t, resolved.Configured)
	require.True(t, resolved.IsActive)
	require.Equal(t, "#0066cc", resolved.Config.Theme.PrimaryColor)
	require.Empty(t, resolved.Config.Causes)
	require.NotNil(t, resolved.Config.Causes)
}

func TestWidgetConfigAnswersCrossOriginPreflight(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "CORS Org")

	response := performJSONRequest(t, api.router, http.MethodOptions, "/widget-config/"+organization.ID, nil, map[string]string{
		"Origin":                        "https://charity.example.org",
		"Access-Control-Request-Method": http.MethodGet,
	})
	require.Equal(t, http.StatusNoContent, response.Code)
	require.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))

	getResponse := performJSONRequest(t, api.router, http.MethodGet, "/widget-config/"+organization.ID, nil, map[string]string{
		"Origin": "https://charity.example.org",
	})
	require.Equal(t, http.StatusOK, getResponse.Code)
	require.Equal(t, "*", getResponse.Header().Get("Access-Control-Allow-Origin"))
}

func TestWidgetPageRendersDonationForm(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "River Trust")
	widget := insertWidget(t, api.database, organization.ID, "river-trust", model.WidgetConfigDocument{}, true)
	insertCause(t, api.database, widget.ID, "Upstream Cleanup", 50000, true)
	insertCause(t, api.database, widget.ID, "Fish Ladders", 25000, true)

	response := performJSONRequest(t, api.router, http.MethodGet, "/widget/river-trust", nil, nil)
	require.Equal(t, http.StatusOK, response.Code)
	require.Contains(t, response.Header().Get("Content-Type"), "text/html")

	pageBody := response.Body.String()
	require.Contains(t, pageBody, "River Trust")
	require.Contains(t, pageBody, "/api/widget/river-trust/donations")
	require.Contains(t, pageBody, `"passiton-widget"`)
	require.Contains(t, pageBody, "chosenAmountCents")
	require.Contains(t, pageBody, "state.customAmount")
	require.Contains(t, pageBody, "state.selectedAmountCents = null")
	require.Contains(t, pageBody, "at least $1")
	require.Contains(t, pageBody, "Please select a cause to support.")
	require.NotContains(t, pageBody, "%!(")
}

func TestWidgetPageUnknownOrInactiveSlugReturnsNotFound(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "Paused Org")
	insertWidget(t, api.database, organization.ID, "paused-widget", model.WidgetConfigDocument{}, false)

	missing := performJSONRequest(t, api.router, http.MethodGet, "/widget/never-made", nil, nil)
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Contains(t, missing.Body.String(), "Widget Not Found")

	inactive := performJSONRequest(t, api.router, http.MethodGet, "/widget/paused-widget", nil, nil)
	require.Equal(t, http.StatusNotFound, inactive.Code)
}

func TestSubmitDonationValidatesAmountCauseAndFrequency(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "Food Bank")
	widget := insertWidget(t, api.database, organization.ID, "food-bank", model.WidgetConfigDocument{}, true)
	firstCause := insertCause(t, api.database, widget.ID, "Meals", 0, true)
	insertCause(t, api.database, widget.ID, "Pantry", 0, true)

	tooSmall := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/food-bank/donations", map[string]any{
		"amount": 50,
	}, nil)
	require.Equal(t, http.StatusBadRequest, tooSmall.Code)
	require.Contains(t, tooSmall.Body.String(), "invalid_amount")

	noCause := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/food-bank/donations", map[string]any{
		"amount": 1000,
	}, nil)
	require.Equal(t, http.StatusBadRequest, noCause.Code)
	require.Contains(t, noCause.Body.String(), "missing_cause")

	badFrequency := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/food-bank/donations", map[string]any{
		"amount":    1000,
		"causeId":   firstCause.ID,
		"frequency": "weekly",
	}, nil)
	require.Equal(t, http.StatusBadRequest, badFrequency.Code)
	require.Contains(t, badFrequency.Body.String(), "invalid_frequency")

	unknownCause := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/food-bank/donations", map[string]any{
		"amount":  1000,
		"causeId": "not-a-cause",
	}, nil)
	require.Equal(t, http.StatusBadRequest, unknownCause.Code)
	require.Contains(t, unknownCause.Body.String(), "unknown_cause")

	success := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/food-bank/donations", map[string]any{
		"amount":     1000,
		"causeId":    firstCause.ID,
		"frequency":  "monthly",
		"donorEmail": "donor@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, success.Code)

	var successBody map[string]any
	require.NoError(t, json.Unmarshal(success.Body.Bytes(), &successBody))
	donationID, _ := successBody["donation_id"].(string)
	require.NotEmpty(t, donationID)

	var donation model.Donation
	require.NoError(t, api.database.First(&donation, "id = ?", donationID).Error)
	require.Equal(t, model.DonationStatusPending, donation.Status)
	require.Equal(t, int64(1000), donation.Amount)
	require.Equal(t, model.DonationFrequencyMonthly, donation.Frequency)
}

func TestSubmitDonationAutoSelectsSingleActiveCause(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "One Cause Org")
	widget := insertWidget(t, api.database, organization.ID, "one-cause", model.WidgetConfigDocument{}, true)
	onlyCause := insertCause(t, api.database, widget.ID, "General Fund", 0, true)
	insertCause(t, api.database, widget.ID, "Dormant", 0, false)

	response := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/one-cause/donations", map[string]any{
		"amount": 100,
	}, nil)
	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	donationID, _ := body["donation_id"].(string)

	var donation model.Donation
	require.NoError(t, api.database.First(&donation, "id = ?", donationID).Error)
	require.Equal(t, onlyCause.ID, donation.CauseID)
	require.Equal(t, model.DonationFrequencyOneTime, donation.Frequency)
}

func TestSubmitDonationHonorsConfiguredMinimumAndRecurringToggle(t *testing.T) {
	api := buildAPIHarness(t)
	organization := insertOrganization(t, api.database, "Strict Org")
	insertWidget(t, api.database, organization.ID, "strict-org", model.WidgetConfigDocument{
		Settings: model.SettingsDocument{
			MinimumDonation: int64Pointer(2000),
			AllowRecurring:  boolPointer(false),
		},
	}, true)

	belowMinimum := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/strict-org/donations", map[string]any{
		"amount": 1500,
	}, nil)
	require.Equal(t, http.StatusBadRequest, belowMinimum.Code)
	require.Contains(t, belowMinimum.Body.String(), "amount_below_minimum")

	recurring := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/strict-org/donations", map[string]any{
		"amount":    2500,
		"frequency": "monthly",
	}, nil)
	require.Equal(t, http.StatusBadRequest, recurring.Code)
	require.Contains(t, recurring.Body.String(), "recurring_disabled")

	accepted := performJSONRequest(t, api.router, http.MethodPost, "/api/widget/strict-org/donations", map[string]any{
		"amount": 2500,
	}, nil)
	require.Equal(t, http.StatusOK, accepted.Code)
}

func TestEmbedScriptServesInitializer(t *testing.T) {
	api := buildAPIHarness(t)

	response := performJSONRequest(t, api.router, http.MethodGet, "/embed/passiton-embed.js", nil, nil)
	require.Equal(t, http.StatusOK, response.Code)
	require.Contains(t, response.Header().Get("Content-Type"), "application/javascript")

	scriptBody := response.Body.String()
	require.Contains(t, scriptBody, `var defaultBaseURL = "`+testPublicBaseURL+`"`)
	require.Contains(t, scriptBody, "PassItOnEmbed")
	require.Contains(t, scriptBody, "data-passiton-widget")
	require.Contains(t, scriptBody, `"passiton-widget"`)
	require.Contains(t, scriptBody, `"close"`)
	require.Contains(t, scriptBody, `"resize"`)
	require.NotContains(t, scriptBody, "%!(")
}

func TestEmbedMarkupExpandsQueryIntoIframeMarkup(t *testing.T) {
	api := buildAPIHarness(t)

	response := performJSONRequest(t, api.router, http.MethodGet, "/embed/markup?slug=river-trust&style=modal&button_text=Give", nil, nil)
	require.Equal(t, http.StatusOK, response.Code)

	markup := response.Body.String()
	require.Contains(t, markup, testPublicBaseURL+"/widget/river-trust")
	require.Contains(t, markup, "Give")
	require.Contains(t, markup, "passiton-modal-content")

	missingSlug := performJSONRequest(t, api.router, http.MethodGet, "/embed/markup?style=modal", nil, nil)
	require.Equal(t, http.StatusBadRequest, missingSlug.Code)

	badStyle := performJSONRequest(t, api.router, http.MethodGet, "/embed/markup?slug=ok-slug&style=popup", nil, nil)
	require.Equal(t, http.StatusBadRequest, badStyle.Code)
}
