package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Field names submitted by the input stage form.
const (
	LinkField = "link"
	OKField   = "ok"
)

// StageView provides data for the input stage header.
type StageView struct {
	// Endpoint is the current text field value.
	Endpoint string
	// Action is the form target.
	Action string
}

// StageHeader renders the header chrome: title, language menu and the
// endpoint form with its ok button.
func StageHeader(page PageContext, view StageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		action := view.Action
		if action == "" {
			action = "/"
		}
		h.open("header", "class", "app-bar")
		h.element("h1", T(page.Loc, "app.title"))
		h.open("form", "class", "endpoint-form", "method", "post", "action", href(action))
		h.element("label", T(page.Loc, "stage.endpoint_label"), "for", "endpoint-input")
		h.open("input",
			"id", "endpoint-input",
			"type", "text",
			"name", LinkField,
			"value", view.Endpoint,
			"placeholder", T(page.Loc, "stage.endpoint_placeholder"),
			"autocomplete", "off",
		)
		h.element("button", T(page.Loc, "stage.ok"), "type", "submit", "name", OKField, "value", "1")
		h.close("form")
		h.component(ctx, LanguageMenu(page))
		h.close("header")
		return h.err
	})
}
