package embed

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
)

// Style selects one of the host-page embed presentations.
type Style string

const (
	StyleInline  Style = "inline"
	StyleModal   Style = "modal"
	StyleSidebar Style = "sidebar"

	DefaultWidth      = "100%"
	DefaultHeight     = "600px"
	DefaultButtonText = "Donate Now"

	widgetPathPrefix = "/widget/"
	instanceIDPrefix = "passiton-widget-"
)

var (
	ErrInvalidEmbedSlug  = errors.New("invalid_embed_slug")
	ErrInvalidEmbedStyle = errors.New("invalid_embed_style")
)

// Options configures one embed instance. Zero values fall back to defaults.
type Options struct {
	Style      Style
	Width      string
	Height     string
	ButtonText string
	BaseURL    string
}

// ParseStyle normalizes a caller-supplied style name; blank means inline.
func ParseStyle(rawStyle string) (Style, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawStyle))
	if normalized == "" {
		return StyleInline, nil
	}
	style := Style(normalized)
	switch style {
	case StyleInline, StyleModal, StyleSidebar:
		return style, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEmbedStyle, rawStyle)
	}
}

var (
	inlineMarkupTemplate = template.Must(template.New("embed_inline").Parse(`<div id="{{.InstanceID}}" class="passiton-widget-container" style="width: {{.Width}}; height: {{.Height}};">
  <iframe src="{{.IframeSrc}}" class="passiton-widget-iframe" width="100%" height="100%" frameborder="0" loading="lazy" title="PassItOn Donation Widget"></iframe>
</div>`))

	modalMarkupTemplate = template.Must(template.New("embed_modal").Parse(`<div id="{{.InstanceID}}" class="passiton-modal-trigger">
  <button type="button" id="{{.InstanceID}}-trigger" class="passiton-donate-btn">{{.ButtonText}}</button>
  <div id="{{.InstanceID}}-modal" class="passiton-modal" role="dialog" aria-modal="true">
    <div class="passiton-modal-content">
      <span id="{{.InstanceID}}-close" class="passiton-close" role="button" aria-label="Close">&times;</span>
      <iframe src="{{.IframeSrc}}" width="100%" height="100%" frameborder="0" loading="lazy" title="PassItOn Donation Widget"></iframe>
    </div>
  </div>
</div>`))

	sidebarMarkupTemplate = template.Must(template.New("embed_sidebar").Parse(`<div id="{{.InstanceID}}-sidebar" class="passiton-sidebar-widget">
  <div id="{{.InstanceID}}-tab" class="passiton-sidebar-tab">{{.ButtonText}}</div>
  <iframe src="{{.IframeSrc}}" width="100%" height="100%" frameborder="0" loading="lazy" title="PassItOn Donation Widget"></iframe>
</div>`))
)

type markupData struct {
	InstanceID string
	IframeSrc  string
	Width      string
	Height     string
	ButtonText string
}

// Render produces the host-page markup for one embed instance. It is a pure
// function of (slug, options) apart from the generated instance identifier,
// which is unique per invocation so multiple embeds of the same widget
// coexist on one page.
func Render(slug string, options Options) (string, error) {
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	if err := model.ValidateWidgetSlug(normalizedSlug); err != nil {
		return "", ErrInvalidEmbedSlug
	}

	style := options.Style
	if style == "" {
		style = StyleInline
	}

	data := markupData{
		InstanceID: NewInstanceID(),
		IframeSrc:  IframeSrc(options.BaseURL, normalizedSlug),
		Width:      defaultString(options.Width, DefaultWidth),
		Height:     defaultString(options.Height, DefaultHeight),
		ButtonText: defaultString(options.ButtonText, DefaultButtonText),
	}

	var builder strings.Builder
	var executeErr error
	switch style {
	case StyleInline:
		executeErr = inlineMarkupTemplate.Execute(&builder, data)
	case StyleModal:
		executeErr = modalMarkupTemplate.Execute(&builder, data)
	case StyleSidebar:
		executeErr = sidebarMarkupTemplate.Execute(&builder, data)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEmbedStyle, string(style))
	}
	if executeErr != nil {
		return "", fmt.Errorf("render embed markup: %w", executeErr)
	}
	return builder.String(), nil
}

// NewInstanceID generates a collision-free per-instance element identifier.
func NewInstanceID() string {
	return instanceIDPrefix + storage.NewID()
}

// IframeSrc builds the public widget page URL an embed iframe points at.
func IframeSrc(baseURL string, slug string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + widgetPathPrefix + slug
}

func defaultString(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
