package embed

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// WordPress-style shortcode: [passiton_widget slug="spring-appeal" style="modal"
// width="100%" height="600px" button_text="Give"].
// Drupal-style token: [passiton-widget:spring-appeal:modal:100%:600px].
const (
	shortcodeAttributeSlug       = "slug"
	shortcodeAttributeStyle      = "style"
	shortcodeAttributeWidth      = "width"
	shortcodeAttributeHeight     = "height"
	shortcodeAttributeButtonText = "button_text"
)

var (
	ErrMalformedShortcode = errors.New("malformed_shortcode")
	ErrMalformedToken     = errors.New("malformed_token")

	shortcodeExpression = regexp.MustCompile(`\[passiton_widget((?:\s+[a-z_]+="[^"]*")*)\s*\]`)
	attributeExpression = regexp.MustCompile(`([a-z_]+)="([^"]*)"`)
	tokenExpression     = regexp.MustCompile(`\[passiton-widget:([^:\]]+)(?::([^:\]]*))?(?::([^:\]]*))?(?::([^:\]]*))?\]`)
)

// ParseShortcode extracts the slug and options from a WordPress-style
// shortcode string.
func ParseShortcode(shortcode string) (string, Options, error) {
	match := shortcodeExpression.FindStringSubmatch(strings.TrimSpace(shortcode))
	if match == nil {
		return "", Options{}, ErrMalformedShortcode
	}
	return parseShortcodeAttributes(match[1])
}

func parseShortcodeAttributes(rawAttributes string) (string, Options, error) {
	attributes := map[string]string{}
	for _, pair := range attributeExpression.FindAllStringSubmatch(rawAttributes, -1) {
		attributes[pair[1]] = pair[2]
	}

	slug := strings.TrimSpace(attributes[shortcodeAttributeSlug])
	if slug == "" {
		return "", Options{}, fmt.Errorf("%w: missing slug", ErrMalformedShortcode)
	}

	style, styleErr := ParseStyle(attributes[shortcodeAttributeStyle])
	if styleErr != nil {
		return "", Options{}, styleErr
	}

	return slug, Options{
		Style:      style,
		Width:      strings.TrimSpace(attributes[shortcodeAttributeWidth]),
		Height:     strings.TrimSpace(attributes[shortcodeAttributeHeight]),
		ButtonText: strings.TrimSpace(attributes[shortcodeAttributeButtonText]),
	}, nil
}

// ParseToken extracts the slug and options from a Drupal-style colon token.
// Trailing fields are optional: [passiton-widget:slug], [passiton-widget:
// slug:style], and so on up to width and height.
func ParseToken(token string) (string, Options, error) {
	match := tokenExpression.FindStringSubmatch(strings.TrimSpace(token))
	if match == nil {
		return "", Options{}, ErrMalformedToken
	}

	slug := strings.TrimSpace(match[1])
	if slug == "" {
		return "", Options{}, fmt.Errorf("%w: missing slug", ErrMalformedToken)
	}

	style, styleErr := ParseStyle(match[2])
	if styleErr != nil {
		return "", Options{}, styleErr
	}

	return slug, Options{
		Style:  style,
		Width:  strings.TrimSpace(match[3]),
		Height: strings.TrimSpace(match[4]),
	}, nil
}

// ExpandShortcodes replaces every well-formed shortcode and token inside an
// HTML body with rendered embed markup, leaving malformed occurrences and the
// surrounding text untouched. This is the server-side path the WordPress and
// Drupal adapters delegate to.
func ExpandShortcodes(body string, baseURL string) string {
	expanded := shortcodeExpression.ReplaceAllStringFunc(body, func(occurrence string) string {
		slug, options, parseErr := ParseShortcode(occurrence)
		if parseErr != nil {
			return occurrence
		}
		options.BaseURL = baseURL
		markup, renderErr := Render(slug, options)
		if renderErr != nil {
			return occurrence
		}
		return markup
	})

	return tokenExpression.ReplaceAllStringFunc(expanded, func(occurrence string) string {
		slug, options, parseErr := ParseToken(occurrence)
		if parseErr != nil {
			return occurrence
		}
		options.BaseURL = baseURL
		markup, renderErr := Render(slug, options)
		if renderErr != nil {
			return occurrence
		}
		return markup
	})
}
