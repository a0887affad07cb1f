package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

type pageCall struct {
	query url.Values
	page  int
}

type fakePageSource struct {
	mu         sync.Mutex
	totalPages int
	items      map[int][]models.Subject
	err        error
	calls      []pageCall
}

func (f *fakePageSource) ListPage(_ context.Context, query url.Values, page, perPage int) (models.Page[models.Subject], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageCall{query: query, page: page})
	if f.err != nil {
		return models.Page[models.Subject]{}, f.err
	}
	if page > f.totalPages {
		page = f.totalPages
	}
	return models.Page[models.Subject]{
		Items:  f.items[page],
		Cursor: models.PageCursor{CurrentPage: page, TotalPages: f.totalPages, PerPage: perPage},
	}, nil
}

func (f *fakePageSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newSubjectSource() *fakePageSource {
	return &fakePageSource{
		totalPages: 2,
		items: map[int][]models.Subject{
			1: {{ID: "1", SubjectName: "Math"}, {ID: "2", SubjectName: "English"}},
			2: {{ID: "3", SubjectName: "Biology"}},
		},
	}
}

func TestListStoreLoadReplacesPage(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{Resource: "subjects", PerPage: 2})
	assert.Equal(t, models.ViewIdle, store.Snapshot().State)

	require.NoError(t, store.Load(context.Background(), 1))
	snap := store.Snapshot()
	assert.Equal(t, models.ViewLoaded, snap.State)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, models.PageCursor{CurrentPage: 1, TotalPages: 2, PerPage: 2}, snap.Cursor)

	require.NoError(t, store.Next(context.Background()))
	snap = store.Snapshot()
	assert.Equal(t, []models.Subject{{ID: "3", SubjectName: "Biology"}}, snap.Items)
	assert.Equal(t, 2, snap.Cursor.CurrentPage)
}

func TestListStoreUsesServerReportedPage(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 2})

	require.NoError(t, store.Load(context.Background(), 9))
	assert.Equal(t, 2, store.Snapshot().Cursor.CurrentPage)
}

func TestListStoreNextIsNoOpOnLastPage(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 2})
	require.NoError(t, store.Load(context.Background(), 2))
	before := store.Snapshot()
	calls := source.callCount()

	require.NoError(t, store.Next(context.Background()))
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, calls, source.callCount())
}

func TestListStorePreviousIsNoOpOnFirstPage(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 2})
	require.NoError(t, store.Load(context.Background(), 1))
	before := store.Snapshot()

	require.NoError(t, store.Previous(context.Background()))
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 1, source.callCount())
}

func TestListStoreFailureKeepsData(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{Resource: "subjects", PerPage: 2})
	require.NoError(t, store.Load(context.Background(), 1))

	source.err = appErrors.ErrBackendUnavailable
	err := store.Next(context.Background())
	require.Error(t, err)

	snap := store.Snapshot()
	assert.Equal(t, models.ViewFailed, snap.State)
	assert.Equal(t, "Failed to load subjects!", snap.Error)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 1, snap.Cursor.CurrentPage)

	source.err = nil
	require.NoError(t, store.Reload(context.Background()))
	snap = store.Snapshot()
	assert.Equal(t, models.ViewLoaded, snap.State)
	assert.Empty(t, snap.Error)
}

func TestListStoreSetQueryResetsToFirstPage(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 2})
	require.NoError(t, store.Load(context.Background(), 2))

	require.NoError(t, store.SetQuery(context.Background(), url.Values{"search": {"bio"}}))
	assert.Equal(t, 1, store.Snapshot().Cursor.CurrentPage)
	last := source.calls[len(source.calls)-1]
	assert.Equal(t, 1, last.page)
	assert.Equal(t, "bio", last.query.Get("search"))
}

func TestListStoreRestoreEnablesStatelessNavigation(t *testing.T) {
	source := newSubjectSource()
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 2})
	store.Restore(models.PageCursor{CurrentPage: 1, TotalPages: 2})

	require.NoError(t, store.Next(context.Background()))
	assert.Equal(t, 2, source.calls[0].page)

	idle := NewListStore[models.Subject](source, ListOptions{PerPage: 2})
	idle.Restore(models.PageCursor{CurrentPage: 5, TotalPages: 2})
	assert.Equal(t, 2, idle.Snapshot().Cursor.CurrentPage)
}

type gatedSource struct {
	release map[int]chan struct{}
	started chan int
}

func (g *gatedSource) ListPage(_ context.Context, _ url.Values, page, perPage int) (models.Page[models.Subject], error) {
	g.started <- page
	<-g.release[page]
	return models.Page[models.Subject]{
		Items:  []models.Subject{{ID: models.ID(string(rune('0' + page))), SubjectName: "page"}},
		Cursor: models.PageCursor{CurrentPage: page, TotalPages: 3, PerPage: perPage},
	}, nil
}

func TestListStoreDiscardsStaleResponses(t *testing.T) {
	source := &gatedSource{
		release: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
		started: make(chan int, 2),
	}
	store := NewListStore[models.Subject](source, ListOptions{PerPage: 1})

	slow := make(chan error, 1)
	go func() { slow <- store.Load(context.Background(), 1) }()
	require.Equal(t, 1, <-source.started)

	fast := make(chan error, 1)
	go func() { fast <- store.Load(context.Background(), 2) }()
	require.Equal(t, 2, <-source.started)

	close(source.release[2])
	require.NoError(t, <-fast)
	close(source.release[1])
	err := <-slow
	assert.True(t, errors.Is(err, appErrors.ErrStaleResponse))

	snap := store.Snapshot()
	assert.Equal(t, 2, snap.Cursor.CurrentPage)
	assert.Equal(t, models.ViewLoaded, snap.State)
}
