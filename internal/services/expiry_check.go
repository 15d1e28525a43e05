package services

import (
	"context"
	"fmt"

	"pharmabot/internal/domain"
	applog "pharmabot/internal/log"
)

// RunExpiryCheck is one scheduler tick: scan for medicines inside the
// horizon, then fan out alerts. Per-item send failures stay inside the
// dispatcher's report; only the scan itself can fail the tick.
func RunExpiryCheck(ctx context.Context, inv *InventoryService, n *Notifier, horizonDays int) (domain.NotificationReport, error) {
	meds, err := inv.ScanExpiring(horizonDays)
	if err != nil {
		return domain.NotificationReport{}, fmt.Errorf("scan expiring: %w", err)
	}
	if len(meds) == 0 {
		applog.Info("expiry.scan", map[string]any{"expiring": 0})
		return domain.NotificationReport{}, nil
	}

	report := n.NotifyExpiring(ctx, meds)
	applog.Info("expiry.scan", map[string]any{
		"expiring":  len(meds),
		"attempted": report.Attempted,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
	return report, nil
}
