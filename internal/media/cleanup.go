package media

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const cleanupConcurrency = 4

// CleanupFailure records one image that could not be deleted.
type CleanupFailure struct {
	URL string
	Err error
}

// CleanupReport is the outcome of a compensating delete.
type CleanupReport struct {
	Reason   string
	Deleted  []string
	Failures []CleanupFailure
}

// OK reports whether every delete succeeded.
func (r CleanupReport) OK() bool {
	return len(r.Failures) == 0
}

// Cleanup deletes urls concurrently and waits for all of them. Failures are
// logged and returned in the report, never as an error, so they cannot
// replace the error of the operation that triggered the cleanup.
func Cleanup(ctx context.Context, d Deleter, urls []string, reason string, logger *zap.Logger) CleanupReport {
	report := CleanupReport{Reason: reason}
	if len(urls) == 0 {
		return report
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(cleanupConcurrency)

	for _, u := range urls {
		g.Go(func() error {
			err := d.DeleteImage(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, CleanupFailure{URL: u, Err: err})
				return nil
			}
			report.Deleted = append(report.Deleted, u)
			return nil
		})
	}
	g.Wait()

	for _, f := range report.Failures {
		logger.Warn("Image cleanup failed",
			zap.String("reason", reason),
			zap.String("url", f.URL),
			zap.Error(f.Err),
		)
	}
	if len(report.Failures) == 0 {
		logger.Debug("Image cleanup finished", zap.String("reason", reason), zap.Int("deleted", len(report.Deleted)))
	}
	return report
}
