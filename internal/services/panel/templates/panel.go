package templates

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/restpanel/internal/dataprovider"
	"github.com/louisbranch/restpanel/internal/guesser"
	"github.com/louisbranch/restpanel/internal/record"
	"github.com/louisbranch/restpanel/internal/scaffold"
	"golang.org/x/text/number"
)

// PanelSectionID is the DOM id htmx swaps when navigating the list.
const PanelSectionID = "admin-panel"

// PanelView provides data for the admin panel.
type PanelView struct {
	// Link is the endpoint reference the panel is bound to.
	Link string
	// Resources lists the managed resource names for the menu.
	Resources []string
	// List is the current list page.
	List scaffold.ListView
	// ListURL builds list URLs for navigation links.
	ListURL func(resource string, params scaffold.ListParams) string
}

func (v PanelView) listURL(params scaffold.ListParams) string {
	if v.ListURL == nil {
		return ""
	}
	return v.ListURL(v.List.Resource, params)
}

// Panel renders the admin scaffold: resource menu, list table and pagination.
func Panel(page PageContext, view PanelView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.open("section", "id", PanelSectionID, "class", "admin-panel", "data-link", view.Link)
		h.open("nav", "class", "resource-menu")
		for _, name := range view.Resources {
			attrs := []string{"href", href(view.resourceURL(name)), "hx-get", view.resourceURL(name), "hx-target", "#" + PanelSectionID, "hx-swap", "outerHTML"}
			if name == view.List.Resource {
				attrs = append(attrs, "class", "active", "aria-current", "page")
			}
			h.element("a", resourceLabel(page.Loc, name), attrs...)
		}
		h.close("nav")

		h.element("h2", resourceLabel(page.Loc, view.List.Resource))
		switch {
		case view.List.Err != nil:
			h.element("div", T(page.Loc, "list.error", view.List.Error()), "class", "notification error", "role", "alert")
		case view.List.Empty():
			h.element("p", T(page.Loc, "list.empty"), "class", "empty")
		default:
			h.component(ctx, ListTable(page, view))
			h.component(ctx, Pagination(page, view))
		}
		h.close("section")
		return h.err
	})
}

func (v PanelView) resourceURL(name string) string {
	if v.ListURL == nil {
		return ""
	}
	return v.ListURL(name, scaffold.DefaultListParams())
}

func resourceLabel(loc Localizer, name string) string {
	key := "resource." + name
	if label := T(loc, key); label != "" && label != key {
		return label
	}
	return guesser.Humanize(name)
}

// ListTable renders the guessed columns of the current list page.
func ListTable(page PageContext, view PanelView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		list := view.List
		h.open("table", "class", "datagrid")
		h.open("thead")
		h.open("tr")
		for _, col := range list.Columns {
			h.component(ctx, columnHeader(page, view, col))
		}
		h.close("tr")
		h.close("thead")
		h.open("tbody")
		for _, rec := range list.Records {
			h.open("tr", "data-id", rec.ID())
			for _, col := range list.Columns {
				value, _ := rec.Get(col.Source)
				h.open("td", "class", "cell-"+string(col.Kind))
				h.component(ctx, Cell(page, col, value))
				h.close("td")
			}
			h.close("tr")
		}
		h.close("tbody")
		h.close("table")
		return h.err
	})
}

func columnHeader(page PageContext, view PanelView, col guesser.Column) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		params := view.List.Params
		sorted := params.Sort == col.Source
		thAttrs := []string{"scope", "col"}
		if sorted {
			ariaSort := "ascending"
			if params.Order == dataprovider.SortDesc {
				ariaSort = "descending"
			}
			thAttrs = append(thAttrs, "aria-sort", ariaSort)
		}
		h.open("th", thAttrs...)
		label := col.Label
		if label == "" {
			label = guesser.Humanize(col.Source)
		}
		target := view.listURL(params.WithSort(col.Source))
		if target == "" || col.Kind == guesser.KindArray || col.Kind == guesser.KindObject {
			h.text(label)
			h.close("th")
			return h.err
		}
		h.element("a", label,
			"href", href(target),
			"hx-get", target,
			"hx-target", "#"+PanelSectionID,
			"hx-swap", "outerHTML",
			"title", T(page.Loc, "list.sort_by", label),
		)
		h.close("th")
		return h.err
	})
}

// Pagination renders the shown range and previous/next links.
func Pagination(page PageContext, view PanelView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		list := view.List
		h.open("nav", "class", "pagination")
		h.element("span", T(page.Loc, "list.range", list.FirstIndex(), list.LastIndex(), list.Total), "class", "range")
		pageLink := func(label string, target int, enabled bool) {
			if !enabled {
				h.element("span", label, "class", "disabled", "aria-disabled", "true")
				return
			}
			u := view.listURL(list.Params.WithPage(target))
			h.element("a", label, "href", href(u), "hx-get", u, "hx-target", "#"+PanelSectionID, "hx-swap", "outerHTML")
		}
		pageLink(T(page.Loc, "list.prev"), list.Params.Page-1, list.HasPrev())
		pageLink(T(page.Loc, "list.next"), list.Params.Page+1, list.HasNext())
		h.close("nav")
		return h.err
	})
}

// Cell renders one record value according to the column kind.
func Cell(page PageContext, col guesser.Column, value record.Value) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if value.IsNull() {
			return nil
		}
		switch col.Kind {
		case guesser.KindNumber:
			h.text(formatNumber(page.Loc, value))
		case guesser.KindBoolean:
			if value.Bool() {
				h.element("span", "✓", "class", "bool true", "aria-label", T(page.Loc, "list.true"))
			} else {
				h.element("span", "✗", "class", "bool false", "aria-label", T(page.Loc, "list.false"))
			}
		case guesser.KindDate:
			h.element("time", formatDate(value.Str()), "datetime", value.Str())
		case guesser.KindEmail:
			h.element("a", value.Str(), "href", href("mailto:"+value.Str()))
		case guesser.KindURL:
			h.element("a", value.Str(), "href", href(value.Str()), "target", "_blank", "rel", "noopener noreferrer")
		case guesser.KindReference:
			h.element("span", value.Str(), "class", "reference", "data-reference", col.Reference)
		case guesser.KindArray:
			h.open("ul", "class", "chips")
			for _, item := range value.Items() {
				h.element("li", inlineValue(item))
			}
			h.close("ul")
		case guesser.KindObject:
			h.element("code", inlineValue(value))
		default:
			h.text(inlineValue(value))
		}
		return h.err
	})
}

func formatNumber(loc Localizer, value record.Value) string {
	if value.Type() != record.Number {
		return value.Str()
	}
	raw := value.Str()
	// Integers beyond float64 precision keep their source digits.
	if !strings.ContainsAny(raw, ".eE") && len(strings.TrimPrefix(raw, "-")) > 15 {
		return raw
	}
	if loc == nil {
		return strconv.FormatFloat(value.Float(), 'f', -1, 64)
	}
	return loc.Sprintf("%v", number.Decimal(value.Float()))
}

func formatDate(raw string) string {
	t, ok := guesser.ParseDate(raw)
	if !ok {
		return raw
	}
	if len(raw) == len(time.DateOnly) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func inlineValue(value record.Value) string {
	switch value.Type() {
	case record.Array, record.Object:
		data, err := value.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return value.Str()
	}
}
