// Package blog holds the page math and body layout of the public blog.
package blog

import "context"

const (
	PageSize      = 6
	SidebarSize   = 5
	FallbackImage = "/static/img/logo.png"
)

// Range returns the inclusive row range of page (1 based).
func Range(page int) (from, to int) {
	from = (page - 1) * PageSize
	return from, from + PageSize - 1
}

// TotalPages is ceil(total / PageSize).
func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// Clamp bounds page to [1, totalPages]. With no pages it returns 1.
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// CardImage is the image shown for a post in the list.
func CardImage(imageURLs []string) string {
	if len(imageURLs) > 0 && imageURLs[0] != "" {
		return imageURLs[0]
	}
	return FallbackImage
}

// Fetcher loads rows from..to and returns the total row count.
type Fetcher func(ctx context.Context, from, to int) (total int, err error)

// State is the current page of the list and the page count learned from
// the last fetch.
type State struct {
	Page       int
	TotalPages int
	fetch      Fetcher
}

// NewState creates a list state on page 1.
func NewState(fetch Fetcher) *State {
	return &State{Page: 1, fetch: fetch}
}

// Load fetches the current page.
func (s *State) Load(ctx context.Context) error {
	from, to := Range(s.Page)
	total, err := s.fetch(ctx, from, to)
	if err != nil {
		return err
	}
	s.TotalPages = TotalPages(total)
	return nil
}

// Request moves to page. Pages outside [1, TotalPages] and the current page
// are ignored. It reports whether a fetch happened.
func (s *State) Request(ctx context.Context, page int) (bool, error) {
	if page < 1 || page > s.TotalPages || page == s.Page {
		return false, nil
	}
	s.Page = page
	return true, s.Load(ctx)
}

// Button is one page link.
type Button struct {
	Page   int
	Active bool
}

// Controls describes the pagination bar: prev, one button per page, next.
type Controls struct {
	Visible      bool
	Prev         int
	Next         int
	PrevDisabled bool
	NextDisabled bool
	Pages        []Button
}

// NewControls builds the bar for current of totalPages. It is hidden when
// there is a single page.
func NewControls(current, totalPages int) Controls {
	c := Controls{
		Visible:      totalPages > 1,
		Prev:         current - 1,
		Next:         current + 1,
		PrevDisabled: current <= 1,
		NextDisabled: current >= totalPages,
	}
	for p := 1; p <= totalPages; p++ {
		c.Pages = append(c.Pages, Button{Page: p, Active: p == current})
	}
	return c
}
