package media

import (
	"errors"
	"fmt"
)

var ErrTooManyImages = errors.New("too many images")

// LimitError rejects a batch of files that would exceed the image limit.
type LimitError struct {
	Available int
	Max       int
}

func (e *LimitError) Error() string {
	if e.Available > 0 {
		return fmt.Sprintf("Puedes subir hasta %d imágenes más (límite de %d).", e.Available, e.Max)
	}
	return fmt.Sprintf("No puedes subir más imágenes (límite de %d).", e.Max)
}

func (e *LimitError) Unwrap() error {
	return ErrTooManyImages
}

// Selection tracks the images of one form submission: the URLs the row had
// before the edit, the ones still kept, and the new files to upload.
type Selection struct {
	max      int
	original []string
	kept     []string
	added    []*File
}

// NewSelection starts a selection from the row's current image URLs.
func NewSelection(max int, original []string) *Selection {
	return &Selection{
		max:      max,
		original: append([]string(nil), original...),
		kept:     append([]string(nil), original...),
	}
}

// Max returns the image limit.
func (s *Selection) Max() int {
	return s.max
}

// Len is the number of images the row will have after submit.
func (s *Selection) Len() int {
	return len(s.kept) + len(s.added)
}

// Kept returns the existing URLs still referenced.
func (s *Selection) Kept() []string {
	return append([]string(nil), s.kept...)
}

// Added returns the new files pending upload.
func (s *Selection) Added() []*File {
	return append([]*File(nil), s.added...)
}

// Add appends new files. Either all are added or none.
func (s *Selection) Add(files ...*File) error {
	available := s.max - s.Len()
	if len(files) > available {
		if available < 0 {
			available = 0
		}
		return &LimitError{Available: available, Max: s.max}
	}
	s.added = append(s.added, files...)
	return nil
}

// RemoveAdded drops the i-th pending file. Kept URLs are untouched.
func (s *Selection) RemoveAdded(i int) {
	if i < 0 || i >= len(s.added) {
		return
	}
	s.added = append(s.added[:i:i], s.added[i+1:]...)
}

// RemoveExisting stops referencing url. It is only deleted from storage
// after the row update succeeds.
func (s *Selection) RemoveExisting(url string) {
	for i, u := range s.kept {
		if u == url {
			s.kept = append(s.kept[:i:i], s.kept[i+1:]...)
			return
		}
	}
}

// Keep narrows the kept set to the URLs in keep, preserving original order.
// URLs that were never part of the original set are ignored.
func (s *Selection) Keep(keep []string) {
	wanted := make(map[string]bool, len(keep))
	for _, u := range keep {
		wanted[u] = true
	}
	s.kept = s.kept[:0:0]
	for _, u := range s.original {
		if wanted[u] {
			s.kept = append(s.kept, u)
		}
	}
}

// Plan returns the files to upload and the original URLs to delete once
// the row no longer references them.
func (s *Selection) Plan() (toUpload []*File, toDelete []string) {
	kept := make(map[string]bool, len(s.kept))
	for _, u := range s.kept {
		kept[u] = true
	}
	for _, u := range s.original {
		if !kept[u] {
			toDelete = append(toDelete, u)
		}
	}
	return s.Added(), toDelete
}

// FinalURLs is the image list to store: kept URLs followed by the uploaded
// ones, capped at the limit.
func (s *Selection) FinalURLs(uploaded []string) []string {
	urls := append(s.Kept(), uploaded...)
	if len(urls) > s.max {
		urls = urls[:s.max]
	}
	return urls
}
