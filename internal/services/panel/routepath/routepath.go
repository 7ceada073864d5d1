package routepath

import (
	"net/url"

	"github.com/louisbranch/restpanel/internal/scaffold"
)

const (
	Root = "/"
)

const (
	StaticPrefix = "/static/"
)

const (
	PanelPrefix = "/panel/"
)

// LinkParam carries the endpoint reference on panel fragment requests.
const LinkParam = "link"

// PanelList returns the fragment URL for resource's list bound to link.
func PanelList(resource, link string, params scaffold.ListParams) string {
	query := url.Values{}
	query.Set(LinkParam, link)
	params.Encode(query)
	return (&url.URL{Path: PanelPrefix + url.PathEscape(resource), RawQuery: query.Encode()}).String()
}
