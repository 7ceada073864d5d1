package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
//
// Tag and attribute names are written verbatim and must be string literals in
// the calling component; only text and attribute values are escaped. open
// drops any attribute whose name is not a plain ASCII token.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs alternate name and value.
func (h *htmlWriter) open(tag string, attrs ...string) {
	h.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if !isAttrName(attrs[i]) {
			continue
		}
		h.raw(" " + attrs[i] + "=\"" + templ.EscapeString(attrs[i+1]) + "\"")
	}
	h.raw(">")
}

func isAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}

func (h *htmlWriter) close(tag string) {
	h.raw("</" + tag + ">")
}

func (h *htmlWriter) element(tag, body string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(body)
	h.close(tag)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func href(u string) string {
	return string(templ.URL(u))
}
