// Package i18n resolves the request language of the panel and exposes message
// printers backed by the embedded catalogs.
package i18n
