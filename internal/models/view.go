package models

// Entity is any record managed through the backend.
type Entity interface {
	EntityKey() ID
}

// ViewState is the lifecycle of every fetch-driven view.
type ViewState string

const (
	ViewIdle    ViewState = "idle"
	ViewLoading ViewState = "loading"
	ViewLoaded  ViewState = "loaded"
	ViewFailed  ViewState = "failed"
)

// PageCursor is the pagination position of a list view. Pages are 1-based.
type PageCursor struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	PerPage     int `json:"per_page"`
}

// HasNext reports whether a next page exists.
func (p PageCursor) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPrevious reports whether a previous page exists.
func (p PageCursor) HasPrevious() bool {
	return p.CurrentPage > 1
}

// Page is one bounded slice of a resource collection.
type Page[T any] struct {
	Items  []T
	Cursor PageCursor
}

// Reference is a foreign-key target reduced to what a view displays.
type Reference struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// NoticeLevel classifies user-facing notifications.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a transient user-facing notification.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// FormMode tells whether a draft creates or updates a record.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormUpdate FormMode = "update"
)
