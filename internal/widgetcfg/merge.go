package widgetcfg

import (
	"strings"

	"github.com/PassItOnLabs/widget_svc/internal/model"
)

// MergeTheme lays a stored partial theme document over the default theme,
// field by field. A document missing a key keeps the default for that key;
// the stored object never replaces the default wholesale.
func MergeTheme(document model.ThemeDocument) Theme {
	merged := DefaultTheme()
	if value := stringValue(document.PrimaryColor); value != "" {
		merged.PrimaryColor = value
	}
	if value := stringValue(document.SecondaryColor); value != "" {
		merged.SecondaryColor = value
	}
	if value := stringValue(document.BackgroundColor); value != "" {
		merged.BackgroundColor = value
	}
	if value := stringValue(document.TextColor); value != "" {
		merged.TextColor = value
	}
	if value := stringValue(document.HeaderColor); value != "" {
		merged.HeaderColor = value
	}
	if value := stringValue(document.FontFamily); value != "" {
		merged.FontFamily = value
	}
	if value := stringValue(document.BorderRadius); value != "" {
		merged.BorderRadius = value
	}
	if document.CustomCSS != nil {
		merged.CustomCSS = strings.TrimSpace(*document.CustomCSS)
	}
	if document.HeaderText != nil {
		merged.HeaderText = strings.TrimSpace(*document.HeaderText)
	}
	if value := stringValue(document.HeaderAlignment); value != "" {
		merged.HeaderAlignment = value
	}
	return merged
}

// MergeSettings lays a stored partial settings document over the default
// settings, field by field.
func MergeSettings(document model.SettingsDocument) Settings {
	merged := DefaultSettings()
	if document.ShowProgressBar != nil {
		merged.ShowProgressBar = *document.ShowProgressBar
	}
	if document.ShowDonorList != nil {
		merged.ShowDonorList = *document.ShowDonorList
	}
	if document.AllowRecurring != nil {
		merged.AllowRecurring = *document.AllowRecurring
	}
	if document.MinimumDonation != nil && *document.MinimumDonation >= 1 {
		merged.MinimumDonation = *document.MinimumDonation
	}
	if len(document.SuggestedAmounts) > 0 {
		amounts := make([]int64, 0, len(document.SuggestedAmounts))
		for _, amount := range document.SuggestedAmounts {
			if amount >= 1 {
				amounts = append(amounts, amount)
			}
		}
		if len(amounts) > 0 {
			merged.SuggestedAmounts = amounts
		}
	}
	if document.ShowCoverFees != nil {
		merged.ShowCoverFees = *document.ShowCoverFees
	}
	if document.DefaultFrequency != nil {
		frequency := strings.TrimSpace(*document.DefaultFrequency)
		if model.ValidateDonationFrequency(frequency) == nil {
			merged.DefaultFrequency = frequency
		}
	}
	return merged
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
