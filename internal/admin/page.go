// Package admin holds the list state of the admin entity pages.
package admin

import (
	"context"
	"errors"
)

var ErrNoPendingDelete = errors.New("no delete awaiting confirmation")

// Status is the list fetch state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Entity is a row managed by an admin page.
type Entity interface {
	Key() int64
}

// Loader fetches the full, ordered list of rows.
type Loader[T Entity] func(ctx context.Context) ([]T, error)

// Messages turns errors into banner text.
type Messages func(err error) string

// Page is the state of one admin entity page. Editing and the delete
// confirmation are independent of the list state, and list errors and action
// errors are kept in separate slots.
type Page[T Entity] struct {
	Status             Status
	Items              []T
	ListError          string
	ActionError        string
	Editing            *T
	DeleteConfirmation *int64

	load    Loader[T]
	message Messages
}

// NewPage creates an idle page. message formats list and action errors.
func NewPage[T Entity](load Loader[T], message Messages) *Page[T] {
	if message == nil {
		message = func(err error) string { return err.Error() }
	}
	return &Page[T]{load: load, message: message}
}

// Load fetches the list. On failure the previous items stay and ListError is
// set; calling Load again is the retry.
func (p *Page[T]) Load(ctx context.Context) error {
	p.Status = StatusLoading
	items, err := p.load(ctx)
	if err != nil {
		p.Status = StatusError
		p.ListError = p.message(err)
		return err
	}
	p.Items = items
	p.ListError = ""
	p.Status = StatusReady
	return nil
}

// Find returns the row with id.
func (p *Page[T]) Find(id int64) (T, bool) {
	for _, it := range p.Items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// BeginEdit opens the edit view for id. It reports whether the row exists.
func (p *Page[T]) BeginEdit(id int64) bool {
	row, ok := p.Find(id)
	if !ok {
		return false
	}
	p.Editing = &row
	return true
}

// Fail records an add, edit or delete failure. The list and the edit view
// are left as they are.
func (p *Page[T]) Fail(message string) {
	p.ActionError = message
}

// RequestDelete asks for confirmation before deleting id.
func (p *Page[T]) RequestDelete(id int64) bool {
	if _, ok := p.Find(id); !ok {
		return false
	}
	p.DeleteConfirmation = &id
	return true
}

// ConfirmDelete runs del for the row awaiting confirmation. On success the
// row leaves the list. On failure ActionError is set and the list is
// refetched; the refetch error, if any, goes to ListError.
func (p *Page[T]) ConfirmDelete(ctx context.Context, del func(ctx context.Context, id int64) error) error {
	if p.DeleteConfirmation == nil {
		return ErrNoPendingDelete
	}
	id := *p.DeleteConfirmation
	p.DeleteConfirmation = nil

	if err := del(ctx, id); err != nil {
		p.ActionError = p.message(err)
		p.Load(ctx)
		return err
	}

	items := p.Items[:0:0]
	for _, it := range p.Items {
		if it.Key() != id {
			items = append(items, it)
		}
	}
	p.Items = items
	p.ActionError = ""
	if p.Editing != nil && (*p.Editing).Key() == id {
		p.Editing = nil
	}
	return nil
}
