package usersapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
)

// json-server list parameters.
const (
	paramSort   = "_sort"
	paramOrder  = "_order"
	paramStart  = "_start"
	paramEnd    = "_end"
	paramPage   = "_page"
	paramLimit  = "_limit"
	paramSearch = "q"
)

// parseListQuery maps json-server query parameters onto a storage query for a
// collection with the given fields. The boolean is false when a filter names a
// field the collection does not have, in which case nothing can match.
func parseListQuery(values url.Values, fields storage.Fields) (storage.ListQuery, bool, error) {
	query := storage.ListQuery{Filters: map[string][]string{}}

	if sortValue := firstListValue(values.Get(paramSort)); sortValue != "" {
		if !fields.IsSortable(sortValue) {
			return storage.ListQuery{}, false, fmt.Errorf("cannot sort by %q", sortValue)
		}
		query.Sort = sortValue
	}
	switch order := strings.ToLower(firstListValue(values.Get(paramOrder))); order {
	case "", "asc":
	case "desc":
		query.Desc = true
	default:
		return storage.ListQuery{}, false, fmt.Errorf("unknown order %q", order)
	}

	start, hasStart, err := intParam(values, paramStart, 0)
	if err != nil {
		return storage.ListQuery{}, false, err
	}
	end, hasEnd, err := intParam(values, paramEnd, 0)
	if err != nil {
		return storage.ListQuery{}, false, err
	}
	limit, hasLimit, err := intParam(values, paramLimit, 1)
	if err != nil {
		return storage.ListQuery{}, false, err
	}
	page, _, err := intParam(values, paramPage, 1)
	if err != nil {
		return storage.ListQuery{}, false, err
	}

	switch {
	case hasEnd:
		if end <= start {
			return storage.ListQuery{}, false, fmt.Errorf("%s must be greater than %s", paramEnd, paramStart)
		}
		query.Offset = start
		query.Limit = end - start
	case hasLimit && hasStart:
		query.Offset = start
		query.Limit = limit
	case hasLimit:
		if page < 1 {
			page = 1
		}
		query.Offset = (page - 1) * limit
		query.Limit = limit
	case hasStart:
		query.Offset = start
	}

	query.Search = strings.TrimSpace(values.Get(paramSearch))

	matchable := true
	for key, fieldValues := range values {
		if key == paramSearch || strings.HasPrefix(key, "_") {
			continue
		}
		if !fields.IsFilterable(key) {
			matchable = false
			continue
		}
		query.Filters[key] = append(query.Filters[key], fieldValues...)
	}
	return query, matchable, nil
}

// firstListValue returns the first entry of a comma separated json-server
// list, such as _sort=username,email.
func firstListValue(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

func intParam(values url.Values, name string, minimum int) (int, bool, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minimum {
		return 0, false, fmt.Errorf("%s must be an integer >= %d", name, minimum)
	}
	return value, true, nil
}
