package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockmate/internal/catalog"
	"stockmate/internal/logging"
)

func (m *Manager) notifyStageError(ctx context.Context, stageName string, item *catalog.Item, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger.With(logging.String(logging.FieldComponent, "workflow-manager")))
	contextLabel := fmt.Sprintf("%s (item #%d)", stageName, item.ID)
	if err := m.notifier.NotifyError(ctx, stageErr, contextLabel); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send error notification")
		} else {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyReviewRequired(ctx context.Context, item *catalog.Item) {
	if m.notifier == nil || item == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger.With(logging.String(logging.FieldComponent, "workflow-manager")))
	if err := m.notifier.NotifyReviewRequired(ctx, item.FileName, item.ReviewReason); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send review notification")
		} else {
			logger.Debug("review notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyItemOutcome(ctx context.Context, item *catalog.Item) {
	if m.notifier == nil || item == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger.With(logging.String(logging.FieldComponent, "workflow-manager")))
	switch item.Status {
	case catalog.StatusCompleted:
		if err := m.notifier.NotifyItemCompleted(ctx, item.FileName); err != nil {
			logger.Debug("item completion notification failed", logging.Error(err))
		}
	case catalog.StatusReview:
		m.copySourceToReview(ctx, item)
		m.notifyReviewRequired(ctx, item)
	}
}

func (m *Manager) onItemStarted(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not get catalog stats for start notification")
		} else {
			m.logger.Warn("catalog stats unavailable for start notification; notification skipped",
				logging.Error(err),
			)
		}
		return
	}
	m.mu.Lock()
	if m.batchActive {
		m.mu.Unlock()
		return
	}
	m.batchActive = true
	m.batchStart = time.Now()
	m.mu.Unlock()

	count := countWorkItems(stats)
	if err := m.notifier.NotifyBatchStarted(ctx, count); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not send batch start notification")
		} else {
			m.logger.Debug("batch start notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) checkBatchCompletion(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not check batch completion")
		} else {
			m.logger.Warn("catalog stats unavailable for completion notification; notification skipped",
				logging.Error(err),
			)
		}
		return
	}
	if active := countWorkItems(stats); active > 0 {
		return
	}

	m.mu.Lock()
	if !m.batchActive {
		m.mu.Unlock()
		return
	}
	start := m.batchStart
	m.batchActive = false
	m.batchStart = time.Time{}
	m.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	processed := stats[catalog.StatusCompleted]
	failed := stats[catalog.StatusFailed]
	if err := m.notifier.NotifyBatchCompleted(ctx, processed, failed, duration); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not send batch completion notification")
		} else {
			m.logger.Debug("batch completion notification failed", logging.Error(err))
		}
	}
}

// countWorkItems counts items that still have pipeline work ahead of them.
func countWorkItems(stats map[catalog.Status]int) int {
	total := 0
	for status, count := range stats {
		if catalog.IsTerminal(status) {
			continue
		}
		total += count
	}
	return total
}
