package widgetcfg

// Theme is the fully populated appearance of a donation widget. Colors are
// CSS color codes; borderRadius is a CSS length.
type Theme struct {
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	HeaderColor     string `json:"headerColor"`
	FontFamily      string `json:"fontFamily"`
	BorderRadius    string `json:"borderRadius"`
	CustomCSS       string `json:"customCss"`
	HeaderText      string `json:"headerText"`
	HeaderAlignment string `json:"headerAlignment"`
}

// Settings is the fully populated donation behavior of a widget. Amounts are
// integer cents.
type Settings struct {
	ShowProgressBar  bool    `json:"showProgressBar"`
	ShowDonorList    bool    `json:"showDonorList"`
	AllowRecurring   bool    `json:"allowRecurring"`
	MinimumDonation  int64   `json:"minimumDonation"`
	SuggestedAmounts []int64 `json:"suggestedAmounts"`
	ShowCoverFees    bool    `json:"showCoverFees"`
	DefaultFrequency string  `json:"defaultFrequency"`
}

// DefaultTheme returns the hardcoded theme applied underneath every stored
// configuration. Every field must carry a usable value.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#0066cc",
		SecondaryColor:  "#e6f2ff",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#1F2937",
		HeaderColor:     "#0F172A",
		FontFamily:      "inter",
		BorderRadius:    "8px",
		CustomCSS:       "",
		HeaderText:      "",
		HeaderAlignment: "center",
	}
}

// DefaultSettings returns the hardcoded settings applied underneath every
// stored configuration.
func DefaultSettings() Settings {
	return Settings{
		ShowProgressBar:  true,
		ShowDonorList:    false,
		AllowRecurring:   true,
		MinimumDonation:  100,
		SuggestedAmounts: []int64{1000, 2500, 5000, 10000},
		ShowCoverFees:    true,
		DefaultFrequency: "one-time",
	}
}
