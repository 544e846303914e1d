package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/devevent-api/pkg/jobs"
	"github.com/noah-isme/devevent-api/pkg/storage"
)

// MediaCleanupJobType marks jobs that delete an uploaded image whose event
// was never stored.
const MediaCleanupJobType = "media.delete"

// NewMediaCleanupHandler returns the queue handler removing orphaned images.
func NewMediaCleanupHandler(media storage.MediaStore, metrics *MetricsService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		if job.Type != MediaCleanupJobType {
			return fmt.Errorf("unexpected job type %q", job.Type)
		}
		key, ok := job.Payload.(string)
		if !ok || key == "" {
			return fmt.Errorf("media cleanup job %s: missing object key", job.ID)
		}
		if err := media.Delete(ctx, key); err != nil {
			metrics.RecordMediaCleanup(false)
			return fmt.Errorf("delete orphaned image %s: %w", key, err)
		}
		metrics.RecordMediaCleanup(true)
		logger.Info("orphaned image deleted", zap.String("key", key), zap.Int("attempt", job.Attempt))
		return nil
	}
}
