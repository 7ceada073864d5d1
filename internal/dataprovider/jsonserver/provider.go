// Package jsonserver implements dataprovider.DataProvider for json-server style
// REST backends.
//
// Resources map to collections at {apiURL}/{resource}. Lists are sliced with
// _sort, _order, _start and _end query parameters and report their size in the
// X-Total-Count response header.
package jsonserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/restpanel/internal/dataprovider"
	"github.com/louisbranch/restpanel/internal/record"
)

// TotalCountHeader carries the collection size on list responses.
const TotalCountHeader = "X-Total-Count"

const (
	tracerName   = "github.com/louisbranch/restpanel/internal/dataprovider/jsonserver"
	maxBodyBytes = 10 << 20
)

// Provider talks to a json-server compatible API rooted at apiURL.
type Provider struct {
	apiURL      string
	client      *http.Client
	recordsPath string
	totalPath   string
	tracer      trace.Tracer
}

var _ dataprovider.DataProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithRecordsPath reads list records from a gjson path of the response body
// instead of expecting a bare array.
func WithRecordsPath(path string) Option {
	return func(p *Provider) {
		p.recordsPath = strings.TrimSpace(path)
	}
}

// WithTotalPath reads list totals from a gjson path of the response body
// instead of the X-Total-Count header.
func WithTotalPath(path string) Option {
	return func(p *Provider) {
		p.totalPath = strings.TrimSpace(path)
	}
}

// New builds a provider bound to apiURL. The URL is used as given.
func New(apiURL string, opts ...Option) *Provider {
	p := &Provider{
		apiURL: apiURL,
		client: http.DefaultClient,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// APIURL returns the URL the provider is bound to.
func (p *Provider) APIURL() string {
	return p.apiURL
}

// GetList fetches one page of resource.
func (p *Provider) GetList(ctx context.Context, resource string, params dataprovider.ListParams) (dataprovider.ListResult, error) {
	query := filterQuery(params.Filter)
	applySortAndRange(query, params.Sort, params.Pagination)
	return p.list(ctx, "getList", resource, query)
}

// GetOne fetches a single record by id.
func (p *Provider) GetOne(ctx context.Context, resource, id string) (record.Record, error) {
	body, _, err := p.do(ctx, "getOne", http.MethodGet, p.itemURL(resource, id), nil)
	if err != nil {
		return record.Record{}, err
	}
	return decodeRecord(body)
}

// GetMany fetches the records whose id is in ids.
func (p *Provider) GetMany(ctx context.Context, resource string, ids []string) ([]record.Record, error) {
	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id)
	}
	body, _, err := p.do(ctx, "getMany", http.MethodGet, p.collectionURL(resource, query), nil)
	if err != nil {
		return nil, err
	}
	records, err := record.ParseList(body, p.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// GetManyReference fetches the page of records whose Target field equals ID.
func (p *Provider) GetManyReference(ctx context.Context, resource string, params dataprovider.ManyReferenceParams) (dataprovider.ListResult, error) {
	query := filterQuery(params.Filter)
	query.Set(params.Target, params.ID)
	applySortAndRange(query, params.Sort, params.Pagination)
	return p.list(ctx, "getManyReference", resource, query)
}

// Create posts a new record and returns the backend's copy.
func (p *Provider) Create(ctx context.Context, resource string, data record.Record) (record.Record, error) {
	payload, err := data.MarshalJSON()
	if err != nil {
		return record.Record{}, fmt.Errorf("encode record: %w", err)
	}
	body, _, err := p.do(ctx, "create", http.MethodPost, p.collectionURL(resource, nil), payload)
	if err != nil {
		return record.Record{}, err
	}
	return decodeRecord(body)
}

// Update replaces the record with id.
func (p *Provider) Update(ctx context.Context, resource, id string, data record.Record) (record.Record, error) {
	payload, err := data.MarshalJSON()
	if err != nil {
		return record.Record{}, fmt.Errorf("encode record: %w", err)
	}
	body, _, err := p.do(ctx, "update", http.MethodPut, p.itemURL(resource, id), payload)
	if err != nil {
		return record.Record{}, err
	}
	return decodeRecord(body)
}

// UpdateMany issues one PUT per id and returns the updated ids.
func (p *Provider) UpdateMany(ctx context.Context, resource string, ids []string, data record.Record) ([]string, error) {
	updated := make([]string, 0, len(ids))
	for _, id := range ids {
		r, err := p.Update(ctx, resource, id, data)
		if err != nil {
			return updated, fmt.Errorf("update %s/%s: %w", resource, id, err)
		}
		updated = append(updated, idOr(r, id))
	}
	return updated, nil
}

// Delete removes the record with id and returns the backend's response record.
func (p *Provider) Delete(ctx context.Context, resource, id string) (record.Record, error) {
	body, _, err := p.do(ctx, "delete", http.MethodDelete, p.itemURL(resource, id), nil)
	if err != nil {
		return record.Record{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return record.New(record.Field{Name: "id", Value: record.StringValue(id)}), nil
	}
	return decodeRecord(body)
}

// DeleteMany issues one DELETE per id and returns the deleted ids.
func (p *Provider) DeleteMany(ctx context.Context, resource string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := p.Delete(ctx, resource, id); err != nil {
			return deleted, fmt.Errorf("delete %s/%s: %w", resource, id, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

func (p *Provider) list(ctx context.Context, op, resource string, query url.Values) (dataprovider.ListResult, error) {
	body, header, err := p.do(ctx, op, http.MethodGet, p.collectionURL(resource, query), nil)
	if err != nil {
		return dataprovider.ListResult{}, err
	}
	records, err := record.ParseList(body, p.recordsPath)
	if err != nil {
		return dataprovider.ListResult{}, fmt.Errorf("decode records: %w", err)
	}
	total, err := p.total(body, header)
	if err != nil {
		return dataprovider.ListResult{}, err
	}
	return dataprovider.ListResult{Data: records, Total: total}, nil
}

func (p *Provider) total(body []byte, header http.Header) (int, error) {
	if p.totalPath != "" {
		value, ok := record.Lookup(body, p.totalPath)
		if !ok || value.Type() != record.Number {
			return 0, fmt.Errorf("read total at %q: %w", p.totalPath, dataprovider.ErrMissingTotal)
		}
		return int(value.Float()), nil
	}
	raw := strings.TrimSpace(header.Get(TotalCountHeader))
	if raw == "" {
		return 0, fmt.Errorf("%s header: %w", TotalCountHeader, dataprovider.ErrMissingTotal)
	}
	// Some servers answer "start-end/total".
	if idx := strings.LastIndex(raw, "/"); idx >= 0 {
		raw = raw[idx+1:]
	}
	total, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s header %q: %w", TotalCountHeader, raw, err)
	}
	return total, nil
}

func (p *Provider) do(ctx context.Context, op, method, target string, payload []byte) ([]byte, http.Header, error) {
	ctx, span := p.tracer.Start(ctx, "jsonserver."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
	)

	fail := func(err error) ([]byte, http.Header, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fail(fmt.Errorf("build %s request: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%s request: %w", op, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("read %s response: %w", op, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(&dataprovider.HTTPError{Status: resp.StatusCode, Body: string(body)})
	}
	return body, resp.Header, nil
}

func (p *Provider) collectionURL(resource string, query url.Values) string {
	target := p.apiURL + "/" + resource
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func (p *Provider) itemURL(resource, id string) string {
	return p.apiURL + "/" + resource + "/" + url.PathEscape(id)
}

func filterQuery(filter dataprovider.Filter) url.Values {
	query := url.Values{}
	for field, value := range filter {
		query.Set(field, value)
	}
	return query
}

func applySortAndRange(query url.Values, sort dataprovider.Sort, pagination dataprovider.Pagination) {
	if sort.Field != "" {
		query.Set("_sort", sort.Field)
		order := sort.Order
		if order == "" {
			order = dataprovider.SortAsc
		}
		query.Set("_order", string(order))
	}
	if pagination.PerPage > 0 {
		start, end := pagination.Range()
		query.Set("_start", strconv.Itoa(start))
		query.Set("_end", strconv.Itoa(end))
	}
}

func decodeRecord(body []byte) (record.Record, error) {
	r, err := record.Parse(body)
	if err != nil {
		return record.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

func idOr(r record.Record, fallback string) string {
	if id := r.ID(); id != "" {
		return id
	}
	return fallback
}
