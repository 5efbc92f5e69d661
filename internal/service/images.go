package service

import (
	"context"
	"errors"

	"pycsa-web/internal/media"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrImagesRequired is returned when a submit that needs images has none.
var ErrImagesRequired = errors.New("images required")

// uploadAll uploads files concurrently and waits for every upload to settle.
// When any upload fails the ones that succeeded are deleted best-effort and
// the first failure is returned. URLs keep the order of files.
func uploadAll(ctx context.Context, images media.Manager, files []*media.File, logger *zap.Logger) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			urls[i], errs[i] = images.UploadImage(ctx, f)
			return nil
		})
	}
	g.Wait()

	var (
		firstErr error
		uploaded []string
	)
	for i, err := range errs {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		uploaded = append(uploaded, urls[i])
	}

	if firstErr != nil {
		media.Cleanup(context.WithoutCancel(ctx), images, uploaded, "partial upload", logger)
		return nil, firstErr
	}
	return urls, nil
}

// saveWithImages runs one submit: upload the new files, write the row with
// the final image list, then settle storage. A failed write deletes the
// uploads and returns the write error. A successful write deletes the
// images the user removed.
func saveWithImages[T any](
	ctx context.Context,
	images media.Manager,
	logger *zap.Logger,
	sel *media.Selection,
	entity string,
	write func(ctx context.Context, urls []string) (*T, error),
) (*T, error) {
	toUpload, toDelete := sel.Plan()

	uploaded, err := uploadAll(ctx, images, toUpload, logger)
	if err != nil {
		return nil, err
	}

	row, err := write(ctx, sel.FinalURLs(uploaded))
	if err != nil {
		media.Cleanup(context.WithoutCancel(ctx), images, uploaded, "failed "+entity+" write", logger)
		return nil, err
	}

	media.Cleanup(context.WithoutCancel(ctx), images, toDelete, "removed "+entity+" images", logger)
	return row, nil
}

// removeRowImages deletes the images of a row that no longer exists.
func removeRowImages(ctx context.Context, images media.Deleter, urls []string, entity string, logger *zap.Logger) media.CleanupReport {
	return media.Cleanup(context.WithoutCancel(ctx), images, urls, "deleted "+entity, logger)
}
