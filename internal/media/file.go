// Package media handles admin image files: validation, storage upload and
// deletion by public URL, and the bookkeeping of which images an edit keeps.
package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSizeMB is the upload ceiling per image.
	MaxFileSizeMB   = 2
	MaxFileSize     = MaxFileSizeMB * 1024 * 1024
	DefaultBucket   = "pycsa-image"
	publicPrefix    = "public/"
	cacheControlSec = 3600
)

// AcceptedTypes lists the MIME types allowed for images.
var AcceptedTypes = []string{
	"image/jpg",
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// File is an image received from a form, held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Ext returns the original extension without the dot, lower-cased.
func (f *File) Ext() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
}

// FileError is a per-file rejection shown next to the image picker.
type FileError struct {
	Name    string
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

func accepted(contentType string) bool {
	for _, t := range AcceptedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// ValidateFile checks the size ceiling and the image type. The declared
// content type must be accepted and agree with the sniffed content.
func ValidateFile(f *File) error {
	declared := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}

	if !accepted(declared) {
		return &FileError{Name: f.Name, Message: fmt.Sprintf("Archivo '%s' tiene un tipo no permitido.", f.Name)}
	}
	if f.Size() > MaxFileSize {
		return &FileError{Name: f.Name, Message: fmt.Sprintf("Archivo '%s' excede el tamaño máximo de %dMB.", f.Name, MaxFileSizeMB)}
	}

	detected := mimetype.Detect(f.Data)
	if !accepted(detected.String()) {
		return &FileError{Name: f.Name, Message: fmt.Sprintf("Archivo '%s' tiene un tipo no permitido.", f.Name)}
	}
	f.ContentType = detected.String()
	return nil
}
