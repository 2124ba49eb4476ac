package httpapi

import (
	_ "embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed assets/passiton-embed.js
var embedJavaScriptSource string

var embedJavaScriptTemplate = texttemplate.Must(texttemplate.New("passiton-embed.js").Parse(embedJavaScriptSource))

//go:embed templates/widget_page.tmpl
var widgetPageTemplateHTML string

var widgetPageTemplate = htmltemplate.Must(htmltemplate.New("widget_page").Parse(widgetPageTemplateHTML))

//go:embed templates/widget_not_found.tmpl
var widgetNotFoundTemplateHTML string

var widgetNotFoundTemplate = htmltemplate.Must(htmltemplate.New("widget_not_found").Parse(widgetNotFoundTemplateHTML))

//go:embed templates/invitation_result.tmpl
var invitationResultTemplateHTML string

var invitationResultTemplate = htmltemplate.Must(htmltemplate.New("invitation_result").Parse(invitationResultTemplateHTML))
