package service

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/pkg/backend"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

// PageSource fetches one page of a resource.
type PageSource[T any] interface {
	ListPage(ctx context.Context, query url.Values, page, perPage int) (models.Page[T], error)
}

// ListOptions configures a ListStore.
type ListOptions struct {
	Resource       string
	PerPage        int
	Query          url.Values
	FailureMessage string
	Logger         *zap.Logger
}

// ListSnapshot is a consistent copy of a store's state.
type ListSnapshot[T any] struct {
	State  models.ViewState
	Items  []T
	Cursor models.PageCursor
	Error  string
}

// ListStore holds at most one page of a resource. Every load takes a new
// generation and only the latest generation may write the state, so a slow
// response can never overwrite a newer one.
type ListStore[T any] struct {
	mu         sync.Mutex
	source     PageSource[T]
	opts       ListOptions
	query      url.Values
	items      []T
	cursor     models.PageCursor
	state      models.ViewState
	errMsg     string
	generation uint64
}

// NewListStore constructs an idle store positioned on page 1.
func NewListStore[T any](source PageSource[T], opts ListOptions) *ListStore[T] {
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FailureMessage == "" {
		opts.FailureMessage = "Failed to load " + opts.Resource + "!"
	}
	return &ListStore[T]{
		source: source,
		opts:   opts,
		query:  cloneValues(opts.Query),
		items:  []T{},
		cursor: models.PageCursor{CurrentPage: 1, TotalPages: 1, PerPage: opts.PerPage},
		state:  models.ViewIdle,
	}
}

// Load fetches page and replaces the held page wholesale. The backend decides
// the effective page. On failure the held page is kept and the store is Failed.
func (s *ListStore[T]) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = models.ViewLoading
	query := cloneValues(s.query)
	s.mu.Unlock()

	result, err := s.source.ListPage(ctx, query, page, s.opts.PerPage)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.opts.Logger.Debug("discarding stale list response",
			zap.String("resource", s.opts.Resource),
			zap.Int("page", page),
		)
		return appErrors.ErrStaleResponse
	}

	if err != nil {
		s.state = models.ViewFailed
		s.errMsg = s.opts.FailureMessage
		s.opts.Logger.Warn("list load failed",
			zap.String("resource", s.opts.Resource),
			zap.Int("page", page),
			zap.Int("backend_status", backend.StatusCode(err)),
			zap.Error(err),
		)
		return err
	}

	items := result.Items
	if items == nil {
		items = []T{}
	}
	cursor := result.Cursor
	if cursor.TotalPages < 1 {
		cursor.TotalPages = 1
	}
	if cursor.CurrentPage < 1 {
		cursor.CurrentPage = 1
	}
	cursor.PerPage = s.opts.PerPage

	s.items = items
	s.cursor = cursor
	s.state = models.ViewLoaded
	s.errMsg = ""
	return nil
}

// Next loads the following page; it is a no-op on the last page.
func (s *ListStore[T]) Next(ctx context.Context) error {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	if !cursor.HasNext() {
		return nil
	}
	return s.Load(ctx, cursor.CurrentPage+1)
}

// Previous loads the preceding page; it is a no-op on page 1.
func (s *ListStore[T]) Previous(ctx context.Context) error {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	if !cursor.HasPrevious() {
		return nil
	}
	return s.Load(ctx, cursor.CurrentPage-1)
}

// Reload refetches the current page.
func (s *ListStore[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	page := s.cursor.CurrentPage
	s.mu.Unlock()
	return s.Load(ctx, page)
}

// SetQuery replaces the query and reloads from page 1.
func (s *ListStore[T]) SetQuery(ctx context.Context, query url.Values) error {
	s.mu.Lock()
	s.query = cloneValues(query)
	s.mu.Unlock()
	return s.Load(ctx, 1)
}

// Restore positions the store on a cursor obtained earlier without fetching.
func (s *ListStore[T]) Restore(cursor models.PageCursor) {
	if cursor.TotalPages < 1 {
		cursor.TotalPages = 1
	}
	if cursor.CurrentPage < 1 {
		cursor.CurrentPage = 1
	}
	if cursor.CurrentPage > cursor.TotalPages {
		cursor.CurrentPage = cursor.TotalPages
	}
	cursor.PerPage = s.opts.PerPage

	s.mu.Lock()
	s.cursor = cursor
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *ListStore[T]) Snapshot() ListSnapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return ListSnapshot[T]{State: s.state, Items: items, Cursor: s.cursor, Error: s.errMsg}
}

func cloneValues(values url.Values) url.Values {
	clone := make(url.Values, len(values))
	for key, vals := range values {
		clone[key] = append([]string(nil), vals...)
	}
	return clone
}
