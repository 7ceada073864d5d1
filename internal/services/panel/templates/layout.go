package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4"

// Page renders the full document: head, the header chrome and main content.
func Page(page PageContext, header templ.Component, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		lang := page.Lang
		if lang == "" {
			lang = "en"
		}
		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", lang)
		h.open("head")
		h.raw(`<meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", T(page.Loc, "app.title"))
		h.open("link", "rel", "stylesheet", "href", "/static/panel.css")
		h.open("script", "src", htmxScriptURL, "defer", "defer")
		h.close("script")
		h.close("head")
		h.open("body")
		h.component(ctx, header)
		h.open("main", "id", "main")
		h.component(ctx, content)
		h.close("main")
		h.close("body")
		h.close("html")
		return h.err
	})
}

// LanguageMenu renders links switching the page language.
func LanguageMenu(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if len(page.Languages) == 0 {
			return nil
		}
		h.open("nav", "class", "language-menu", "aria-label", T(page.Loc, "nav.language"))
		for _, option := range page.Languages {
			attrs := []string{"href", href(page.LanguageURL(option.Tag)), "hreflang", option.Tag}
			if option.Active {
				attrs = append(attrs, "aria-current", "true", "class", "active")
			}
			h.element("a", option.Label, attrs...)
		}
		h.close("nav")
		return h.err
	})
}
