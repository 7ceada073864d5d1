package scaffold

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/restpanel/internal/dataprovider"
	"github.com/louisbranch/restpanel/internal/guesser"
	"github.com/louisbranch/restpanel/internal/platform/timeouts"
	"github.com/louisbranch/restpanel/internal/record"
)

// UsersResource names the single resource managed by the panel.
const UsersResource = "users"

// ListComponent decides the columns of a resource list page.
type ListComponent interface {
	Columns(resource string, records []record.Record) []guesser.Column
}

// ListGuesser infers list columns from the records of the current page.
type ListGuesser struct {
	// Log receives the guessed definition; nil disables logging.
	Log *GuessLog
}

// Columns implements ListComponent.
func (g ListGuesser) Columns(resource string, records []record.Record) []guesser.Column {
	columns := guesser.InferColumns(records)
	if len(columns) > 0 {
		g.Log.Record(resource, columns)
	}
	return columns
}

// Resource is a collection managed by the admin.
type Resource struct {
	Name string
	List ListComponent
}

// Admin renders resource pages backed by Provider.
type Admin struct {
	Provider  dataprovider.DataProvider
	Resources []Resource
	// Timeout bounds each provider call; zero uses timeouts.ProviderRequest.
	Timeout time.Duration
}

// Resource looks up a managed resource by name.
func (a *Admin) Resource(name string) (Resource, bool) {
	if a == nil {
		return Resource{}, false
	}
	for _, res := range a.Resources {
		if res.Name == name {
			return res, true
		}
	}
	return Resource{}, false
}

// DefaultResource returns the first managed resource.
func (a *Admin) DefaultResource() (Resource, bool) {
	if a == nil || len(a.Resources) == 0 {
		return Resource{}, false
	}
	return a.Resources[0], true
}

// List fetches one page of resource and returns the view to render. Provider
// failures are reported through ListView.Err instead of being returned.
func (a *Admin) List(ctx context.Context, resource string, params ListParams) ListView {
	params = params.normalized()
	view := ListView{
		Resource: resource,
		Params:   params,
	}

	res, ok := a.Resource(resource)
	if !ok {
		view.Err = fmt.Errorf("unknown resource %q", resource)
		return view
	}
	if a.Provider == nil {
		view.Err = fmt.Errorf("resource %q has no data provider", resource)
		return view
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = timeouts.ProviderRequest
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := a.Provider.GetList(ctx, resource, dataprovider.ListParams{
		Pagination: dataprovider.Pagination{Page: params.Page, PerPage: params.PerPage},
		Sort:       dataprovider.Sort{Field: params.Sort, Order: params.Order},
		Filter:     params.Filter,
	})
	if err != nil {
		view.Err = err
		return view
	}

	view.Records = result.Data
	view.Total = result.Total
	if res.List != nil {
		view.Columns = res.List.Columns(resource, result.Data)
	}
	return view
}

// ListView is a rendered list page.
type ListView struct {
	Resource string
	Params   ListParams
	Columns  []guesser.Column
	Records  []record.Record
	Total    int
	Err      error
}

// Error returns the provider failure message, or "" when the list loaded.
func (v ListView) Error() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

// Empty reports whether the page loaded with no records.
func (v ListView) Empty() bool {
	return v.Err == nil && len(v.Records) == 0
}

// PageCount returns the number of pages for Total at the current page size.
func (v ListView) PageCount() int {
	if v.Total <= 0 || v.Params.PerPage <= 0 {
		return 1
	}
	return (v.Total + v.Params.PerPage - 1) / v.Params.PerPage
}

// HasPrev reports whether a previous page exists.
func (v ListView) HasPrev() bool {
	return v.Params.Page > 1
}

// HasNext reports whether a next page exists.
func (v ListView) HasNext() bool {
	return v.Err == nil && v.Params.Page < v.PageCount()
}

// FirstIndex and LastIndex are the 1-based bounds of the shown records.
func (v ListView) FirstIndex() int {
	if len(v.Records) == 0 {
		return 0
	}
	start, _ := dataprovider.Pagination{Page: v.Params.Page, PerPage: v.Params.PerPage}.Range()
	return start + 1
}

func (v ListView) LastIndex() int {
	if len(v.Records) == 0 {
		return 0
	}
	return v.FirstIndex() + len(v.Records) - 1
}

// NewUsersAdmin builds an admin managing the users resource with a guessed
// list view.
func NewUsersAdmin(provider dataprovider.DataProvider, guesses *GuessLog) *Admin {
	return &Admin{
		Provider: provider,
		Resources: []Resource{
			{Name: UsersResource, List: ListGuesser{Log: guesses}},
		},
	}
}
