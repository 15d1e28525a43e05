package services_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pharmabot/internal/domain"
	"pharmabot/internal/services"
)

type fakeChannel struct {
	mu    sync.Mutex
	sent  []string
	sendF func(ctx context.Context, chatID int64, text, parseMode string) error
}

func (f *fakeChannel) Send(ctx context.Context, chatID int64, text, parseMode string) error {
	if f.sendF != nil {
		if err := f.sendF(ctx, chatID, text, parseMode); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, text)
	f.mu.Unlock()
	return nil
}

func expiringMeds(n int, expiry string) []domain.Medicine {
	out := make([]domain.Medicine, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Medicine{
			ID: int64(i), Name: "Med-" + strconv.Itoa(i), Stock: 10, ExpiryDate: expiry,
		})
	}
	return out
}

func TestNotifyExpiring_PartialFailuresAreCounted(t *testing.T) {
	sendErr := errors.New("channel rejected")
	ch := &fakeChannel{
		// items carry IDs equal to their position; evens fail
		sendF: func(_ context.Context, _ int64, text, _ string) error {
			if strings.Contains(text, `Med\-0`) || strings.Contains(text, `Med\-2`) ||
				strings.Contains(text, `Med\-4`) || strings.Contains(text, `Med\-6`) {
				return sendErr
			}
			return nil
		},
	}
	n := services.NewNotifier(ch, 42, 4, time.Second)

	report := n.NotifyExpiring(context.Background(), expiringMeds(7, "2025-06-30"))
	if report.Attempted != 7 {
		t.Fatalf("want attempted 7, got %d", report.Attempted)
	}
	if report.Succeeded != 3 || report.Failed != 4 {
		t.Fatalf("want 3/4 split, got succeeded=%d failed=%d", report.Succeeded, report.Failed)
	}
	if len(report.FailedIDs) != 4 {
		t.Fatalf("want 4 failed ids, got %v", report.FailedIDs)
	}
}

func TestNotifyExpiring_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	ch := &fakeChannel{
		sendF: func(context.Context, int64, string, string) error {
			cur := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return nil
		},
	}
	n := services.NewNotifier(ch, 42, 2, time.Second)

	report := n.NotifyExpiring(context.Background(), expiringMeds(10, "2025-06-30"))
	if report.Succeeded != 10 {
		t.Fatalf("want 10 successes, got %+v", report)
	}
	if p := peak.Load(); p > 2 {
		t.Fatalf("worker cap exceeded: peak %d", p)
	}
}

func TestNotifyExpiring_TimedOutSendCountsAsFailure(t *testing.T) {
	ch := &fakeChannel{
		sendF: func(ctx context.Context, _ int64, _, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	n := services.NewNotifier(ch, 42, 4, 30*time.Millisecond)

	report := n.NotifyExpiring(context.Background(), expiringMeds(3, "2025-06-30"))
	if report.Failed != 3 || report.Succeeded != 0 {
		t.Fatalf("want all timed out, got %+v", report)
	}
}

func TestNotifyExpiring_EmptyInputIsNotAnError(t *testing.T) {
	n := services.NewNotifier(&fakeChannel{}, 42, 4, time.Second)
	report := n.NotifyExpiring(context.Background(), nil)
	if report.Attempted != 0 || report.Failed != 0 {
		t.Fatalf("want zero report, got %+v", report)
	}
}

func TestExpiryAlertText(t *testing.T) {
	today := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	m := domain.Medicine{ID: 1, Name: "Aspirin 500mg (EU)", Stock: 42, ExpiryDate: "2025-03-11"}

	text := services.ExpiryAlertText(m, today)
	if !strings.Contains(text, "`10`") {
		t.Fatalf("day count missing: %s", text)
	}
	if !strings.Contains(text, "`11-03-2025`") {
		t.Fatalf("formatted date missing: %s", text)
	}
	if !strings.Contains(text, `Aspirin 500mg \(EU\)`) {
		t.Fatalf("name not escaped: %s", text)
	}
}

func TestExpiryAlertText_AlreadyExpiredGoesNegative(t *testing.T) {
	today := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	m := domain.Medicine{ID: 1, Name: "Old", Stock: 1, ExpiryDate: "2025-03-15"}

	if text := services.ExpiryAlertText(m, today); !strings.Contains(text, "`-5`") {
		t.Fatalf("want -5 day count, got: %s", text)
	}
}
