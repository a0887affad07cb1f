package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
)

// Backend is the subset of the backend client the repositories rely on.
type Backend interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error
}

// ResourceEndpoint describes how one backend collection is addressed and how
// its responses are shaped.
type ResourceEndpoint struct {
	// Path is the collection path on the backend, e.g. "/students".
	Path string
	// ListKey names the envelope field holding the items; empty for bare arrays.
	ListKey string
	// Paginated resources accept page/per_page and report current_page/pages.
	Paginated bool
	// ItemKey names the wrapper around a created or updated entity, if any.
	ItemKey string
}

// Backend collections consumed by the console.
var (
	StudentsEndpoint        = ResourceEndpoint{Path: "/students", ListKey: "students", Paginated: true}
	TeachersEndpoint        = ResourceEndpoint{Path: "/teachers", ListKey: "teachers", Paginated: true}
	ClassesEndpoint         = ResourceEndpoint{Path: "/classes"}
	SubjectsEndpoint        = ResourceEndpoint{Path: "/subjects"}
	ScoresEndpoint          = ResourceEndpoint{Path: "/score_grades"}
	FeeStructuresEndpoint   = ResourceEndpoint{Path: "/fee-structure"}
	FeePaymentsEndpoint     = ResourceEndpoint{Path: "/fee-payment", ListKey: "fee_payments", ItemKey: "fee_payment"}
	PickupLocationsEndpoint = ResourceEndpoint{Path: "/pickup-location", ItemKey: "location"}
)

// ResourceRepository reads and writes one backend collection of T.
type ResourceRepository[T any] struct {
	backend  Backend
	endpoint ResourceEndpoint
	logger   *zap.Logger
}

// NewResourceRepository constructs a repository for endpoint.
func NewResourceRepository[T any](backend Backend, endpoint ResourceEndpoint, logger *zap.Logger) *ResourceRepository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceRepository[T]{backend: backend, endpoint: endpoint, logger: logger}
}

// Endpoint returns the endpoint the repository talks to.
func (r *ResourceRepository[T]) Endpoint() ResourceEndpoint {
	return r.endpoint
}

// ListPage returns one page of the collection. Paginated collections are paged
// by the backend, which decides the effective page; bare collections are
// fetched whole and sliced here, clamping page into the available range.
func (r *ResourceRepository[T]) ListPage(ctx context.Context, query url.Values, page, perPage int) (models.Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	params := url.Values{}
	for key, values := range query {
		for _, value := range values {
			if value != "" {
				params.Add(key, value)
			}
		}
	}

	if !r.endpoint.Paginated {
		items, err := r.fetchAll(ctx, params)
		if err != nil {
			return models.Page[T]{}, err
		}
		return slicePage(items, page, perPage), nil
	}

	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var raw json.RawMessage
	if err := r.backend.Do(ctx, http.MethodGet, r.endpoint.Path, params, nil, &raw); err != nil {
		return models.Page[T]{}, err
	}
	envelope := decodeEnvelope(raw)

	cursor := models.PageCursor{
		CurrentPage: intField(envelope, "current_page", page),
		TotalPages:  intField(envelope, "pages", 1),
		PerPage:     perPage,
	}
	if cursor.TotalPages < 1 {
		cursor.TotalPages = 1
	}
	if cursor.CurrentPage < 1 {
		cursor.CurrentPage = 1
	}

	return models.Page[T]{Items: r.decodeItems(envelope[r.endpoint.ListKey]), Cursor: cursor}, nil
}

// ListAll returns the whole collection, or the first perPage items of a paginated one.
func (r *ResourceRepository[T]) ListAll(ctx context.Context, perPage int) ([]T, error) {
	if r.endpoint.Paginated {
		page, err := r.ListPage(ctx, nil, 1, perPage)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	}
	return r.fetchAll(ctx, nil)
}

// Create posts body and returns the entity the backend created.
func (r *ResourceRepository[T]) Create(ctx context.Context, body map[string]interface{}) (T, error) {
	return r.write(ctx, http.MethodPost, r.endpoint.Path, body)
}

// Update replaces the entity identified by id.
func (r *ResourceRepository[T]) Update(ctx context.Context, id models.ID, body map[string]interface{}) (T, error) {
	return r.write(ctx, http.MethodPut, r.itemPath(id), body)
}

// Delete removes the entity identified by id.
func (r *ResourceRepository[T]) Delete(ctx context.Context, id models.ID) error {
	return r.backend.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

func (r *ResourceRepository[T]) write(ctx context.Context, method, path string, body map[string]interface{}) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := r.backend.Do(ctx, method, path, nil, body, &raw); err != nil {
		return zero, err
	}
	if r.endpoint.ItemKey != "" {
		if inner, ok := decodeEnvelope(raw)[r.endpoint.ItemKey]; ok {
			raw = inner
		}
	}
	var entity T
	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(raw, &entity); err != nil {
		r.logger.Debug("write response not an entity", zap.String("path", path), zap.Error(err))
		return zero, nil
	}
	return entity, nil
}

func (r *ResourceRepository[T]) fetchAll(ctx context.Context, params url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := r.backend.Do(ctx, http.MethodGet, r.endpoint.Path, params, nil, &raw); err != nil {
		return nil, err
	}
	if r.endpoint.ListKey != "" {
		raw = decodeEnvelope(raw)[r.endpoint.ListKey]
	}
	return r.decodeItems(raw), nil
}

// decodeItems tolerates shape drift: a missing or non-array payload yields no
// items and undecodable elements are skipped.
func (r *ResourceRepository[T]) decodeItems(raw json.RawMessage) []T {
	var elements []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elements) != nil {
		return []T{}
	}
	items := make([]T, 0, len(elements))
	for _, element := range elements {
		var item T
		if err := json.Unmarshal(element, &item); err != nil {
			r.logger.Debug("skipping undecodable item", zap.String("path", r.endpoint.Path), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

func (r *ResourceRepository[T]) itemPath(id models.ID) string {
	return r.endpoint.Path + "/" + url.PathEscape(id.String())
}

func slicePage[T any](items []T, page, perPage int) models.Page[T] {
	totalPages := (len(items) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])
	return models.Page[T]{
		Items:  pageItems,
		Cursor: models.PageCursor{CurrentPage: page, TotalPages: totalPages, PerPage: perPage},
	}
}

// decodeEnvelope returns the top-level fields of an object payload, or nil for anything else.
func decodeEnvelope(raw json.RawMessage) map[string]json.RawMessage {
	var envelope map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &envelope) != nil {
		return nil
	}
	return envelope
}

func intField(envelope map[string]json.RawMessage, key string, fallback int) int {
	raw, ok := envelope[key]
	if !ok {
		return fallback
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil || value == nil {
		return fallback
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return fallback
	}
	return n
}
