package templates

import "github.com/louisbranch/restpanel/internal/services/panel/i18n"

// PageContext provides shared layout context for panel pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	Languages    []i18n.LanguageOption
}

// LanguageURL returns the current URL with the language param updated.
func (p PageContext) LanguageURL(tag string) string {
	return i18n.LanguageURL(p.CurrentPath, p.CurrentQuery, tag)
}
