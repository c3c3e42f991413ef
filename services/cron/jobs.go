package cron

import (
	"fmt"
	"time"

	"github.com/trawers/trawers-api/model"
)

// StalePendingAge is how long an order may stay PENDING before the
// nightly sweep cancels it. The payment gateway gives up redelivering
// events well before this.
const StalePendingAge = 24 * time.Hour

// CronLogRetention is how long cron execution logs are kept
const CronLogRetention = 30 * 24 * time.Hour

// CancelStalePendingOrders marks orders stuck in PENDING as CANCELLED
// once their payment can no longer complete. The webhook reconciler
// inserts orders as COMPLETED directly, so today PENDING rows can only
// come from manual inserts or a future flow that freezes the price at
// checkout time; the sweep keeps either from accumulating.
func (m *CronManager) CancelStalePendingOrders() (string, error) {
	cutoff := time.Now().Add(-StalePendingAge)

	result := m.db.Model(&model.Order{}).
		Where("status = ? AND created_at < ?", model.OrderStatusPending, cutoff).
		Update("status", model.OrderStatusCancelled)
	if result.Error != nil {
		return "", fmt.Errorf("failed to cancel stale orders: %w", result.Error)
	}

	return fmt.Sprintf("cancelled %d stale pending orders", result.RowsAffected), nil
}

// PruneCronJobLogs deletes cron execution logs past the retention window
func (m *CronManager) PruneCronJobLogs() (string, error) {
	cutoff := time.Now().Add(-CronLogRetention)

	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", fmt.Errorf("failed to prune cron logs: %w", result.Error)
	}

	return fmt.Sprintf("pruned %d cron log rows", result.RowsAffected), nil
}
