package jobs

import (
	"context"
	"time"

	"carscene-backend/internal/logger"
)

// resolvedTokenRetention is how long resolved invitation and join-request
// rows stay visible in the inbox before the purge removes them. Pending
// tokens are never touched.
const resolvedTokenRetention = 90 * 24 * time.Hour

// PurgeResolvedTokens removes old resolved workflow tokens.
func (jr *JobRunner) PurgeResolvedTokens() {
	jr.runWithRecovery("PurgeResolvedTokens", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().Add(-resolvedTokenRetention)

		purged, err := jr.store.MessageRepository.PurgeResolvedTokens(ctx, cutoff)
		if err != nil {
			logger.Error("Resolved token purge failed", "error", err)
			return
		}
		logger.Info("Resolved tokens purged", "count", purged, "cutoff", cutoff.Format(time.RFC3339))
	})
}

// PurgePendingImages deletes image rows whose upload was never confirmed.
func (jr *JobRunner) PurgePendingImages() {
	jr.runWithRecovery("PurgePendingImages", func() {
		ctx := context.Background()

		purged, err := jr.store.CarRepository.DeleteExpiredPendingImages(ctx)
		if err != nil {
			logger.Error("Pending image purge failed", "error", err)
			return
		}
		logger.Info("Expired pending images purged", "count", purged)
	})
}
