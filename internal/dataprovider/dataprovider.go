// Package dataprovider defines the operations an admin scaffold needs from a
// REST backend. Implementations translate them to a concrete wire dialect.
package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/restpanel/internal/record"
)

// ErrMissingTotal is returned by list operations when the backend response
// carries no total count.
var ErrMissingTotal = errors.New("dataprovider: response has no total count")

// SortOrder is the direction of a list sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ParseSortOrder normalizes an order string, defaulting to ascending.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Pagination selects a 1-based page of PerPage records.
type Pagination struct {
	Page    int
	PerPage int
}

// Range returns the half-open [start, end) record offsets for the page.
func (p Pagination) Range() (start, end int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = 1
	}
	start = (page - 1) * perPage
	return start, start + perPage
}

// Sort orders a list by Field.
type Sort struct {
	Field string
	Order SortOrder
}

// Filter holds exact-match field filters passed through to the backend.
type Filter map[string]string

// ListParams configures GetList.
type ListParams struct {
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// ListResult is one page of records and the total size of the collection.
type ListResult struct {
	Data  []record.Record
	Total int
}

// ManyReferenceParams configures GetManyReference.
type ManyReferenceParams struct {
	Target     string
	ID         string
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// DataProvider is the backend contract of the admin scaffold.
type DataProvider interface {
	GetList(ctx context.Context, resource string, params ListParams) (ListResult, error)
	GetOne(ctx context.Context, resource, id string) (record.Record, error)
	GetMany(ctx context.Context, resource string, ids []string) ([]record.Record, error)
	GetManyReference(ctx context.Context, resource string, params ManyReferenceParams) (ListResult, error)
	Create(ctx context.Context, resource string, data record.Record) (record.Record, error)
	Update(ctx context.Context, resource, id string, data record.Record) (record.Record, error)
	UpdateMany(ctx context.Context, resource string, ids []string, data record.Record) ([]string, error)
	Delete(ctx context.Context, resource, id string) (record.Record, error)
	DeleteMany(ctx context.Context, resource string, ids []string) ([]string, error)
}

// HTTPError reports a non-2xx backend response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("dataprovider: backend responded %d", e.Status)
	}
	const maxBody = 200
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	return fmt.Sprintf("dataprovider: backend responded %d: %s", e.Status, body)
}
