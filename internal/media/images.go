package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadError aborts the submit that needed the image.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	if errors.Is(e.Err, ErrNoPublicURL) {
		return "Error al subir la imagen: no se pudo obtener la URL pública."
	}
	return fmt.Sprintf("Error al subir la imagen: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// DeleteError is returned when storage refuses to delete an image.
type DeleteError struct {
	URL string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("Error al borrar la imagen: %v", e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

var ErrNoPublicURL = errors.New("no public url for uploaded object")

// Deleter removes an image by its public URL.
type Deleter interface {
	DeleteImage(ctx context.Context, publicURL string) error
}

// Manager uploads and deletes admin images.
type Manager interface {
	Deleter
	// UploadImage stores f and returns its public URL. A nil file is a no-op.
	UploadImage(ctx context.Context, f *File) (string, error)
}

type manager struct {
	store  ObjectStore
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a new instance of Manager
func NewManager(store ObjectStore, bucket string, logger *zap.Logger) Manager {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &manager{
		store:  store,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// ObjectPath builds "public/<unix millis>-<random>.<ext>".
func ObjectPath(now time.Time, f *File) string {
	ext := f.Ext()
	if ext == "" {
		ext = strings.TrimPrefix(mimetype.Lookup(f.ContentType).Extension(), ".")
	}
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
	if ext != "" {
		name += "." + ext
	}
	return publicPrefix + name
}

func (m *manager) UploadImage(ctx context.Context, f *File) (string, error) {
	if f == nil {
		return "", nil
	}

	path := ObjectPath(m.now(), f)
	m.logger.Debug("Uploading image", zap.String("path", path), zap.Int64("size", f.Size()))

	if err := m.store.Put(ctx, path, f.Data, f.ContentType); err != nil {
		m.logger.Error("Image upload failed", zap.String("path", path), zap.Error(err))
		return "", &UploadError{Name: f.Name, Err: err}
	}

	publicURL := m.store.PublicURL(path)
	if publicURL == "" {
		return "", &UploadError{Name: f.Name, Err: ErrNoPublicURL}
	}

	m.logger.Info("Image uploaded", zap.String("path", path), zap.String("url", publicURL))
	return publicURL, nil
}

// ObjectPathFromURL extracts the object path following the bucket segment.
// ok is false when the URL does not point into bucket under public/.
func ObjectPathFromURL(publicURL, bucket string) (path string, ok bool) {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}
	segments := strings.Split(parsed.Path, "/")
	for i, s := range segments {
		if s == bucket {
			path = strings.Join(segments[i+1:], "/")
			return path, strings.HasPrefix(path, publicPrefix)
		}
	}
	return "", false
}

func (m *manager) DeleteImage(ctx context.Context, publicURL string) error {
	if publicURL == "" {
		return nil
	}

	path, ok := ObjectPathFromURL(publicURL, m.bucket)
	if !ok {
		m.logger.Warn("Image URL is not in the storage bucket, skipping delete",
			zap.String("url", publicURL),
			zap.String("bucket", m.bucket),
		)
		return nil
	}

	err := m.store.Remove(ctx, path)
	switch {
	case err == nil:
		m.logger.Info("Image deleted", zap.String("path", path))
		return nil
	case errors.Is(err, ErrObjectNotFound):
		m.logger.Info("Image was already gone", zap.String("path", path))
		return nil
	default:
		m.logger.Error("Image delete failed", zap.String("path", path), zap.Error(err))
		return &DeleteError{URL: publicURL, Err: err}
	}
}
