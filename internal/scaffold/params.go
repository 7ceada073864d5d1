package scaffold

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/restpanel/internal/dataprovider"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
	DefaultSort    = "id"
)

// Query parameter names for list navigation.
const (
	PageParam    = "page"
	PerPageParam = "perPage"
	SortParam    = "sort"
	OrderParam   = "order"
	FilterPrefix = "filter."
)

// ListParams selects the page, order and filter of a list view.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string
	Order   dataprovider.SortOrder
	Filter  dataprovider.Filter
}

// DefaultListParams returns page 1 of 10 sorted by id ascending.
func DefaultListParams() ListParams {
	return ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		Sort:    DefaultSort,
		Order:   dataprovider.SortAsc,
	}
}

// ParseListParams reads list navigation from query values. Invalid or missing
// values fall back to the defaults. Filters are read from "filter.<field>".
func ParseListParams(values url.Values) ListParams {
	params := DefaultListParams()
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(PageParam))); err == nil && page > 0 {
		params.Page = page
	}
	if perPage, err := strconv.Atoi(strings.TrimSpace(values.Get(PerPageParam))); err == nil && perPage > 0 {
		params.PerPage = perPage
	}
	if sort := strings.TrimSpace(values.Get(SortParam)); sort != "" {
		params.Sort = sort
	}
	if order := values.Get(OrderParam); order != "" {
		params.Order = dataprovider.ParseSortOrder(order)
	}
	for key, vals := range values {
		field, ok := strings.CutPrefix(key, FilterPrefix)
		if !ok || field == "" || len(vals) == 0 {
			continue
		}
		if params.Filter == nil {
			params.Filter = dataprovider.Filter{}
		}
		params.Filter[field] = vals[0]
	}
	return params.normalized()
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if p.Order == "" {
		p.Order = dataprovider.SortAsc
	}
	return p
}

// Encode writes the params back into query values.
func (p ListParams) Encode(values url.Values) {
	values.Set(PageParam, strconv.Itoa(p.Page))
	values.Set(PerPageParam, strconv.Itoa(p.PerPage))
	values.Set(SortParam, p.Sort)
	values.Set(OrderParam, string(p.Order))
	for field, value := range p.Filter {
		values.Set(FilterPrefix+field, value)
	}
}

// WithPage returns a copy positioned at page.
func (p ListParams) WithPage(page int) ListParams {
	p.Page = page
	return p.normalized()
}

// WithSort returns a copy sorted by field. Sorting by the current field flips
// the order; a new field starts ascending. The page resets to the first.
func (p ListParams) WithSort(field string) ListParams {
	if p.Sort == field {
		p.Order = p.Order.Toggle()
	} else {
		p.Sort = field
		p.Order = dataprovider.SortAsc
	}
	p.Page = DefaultPage
	return p.normalized()
}
