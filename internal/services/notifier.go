package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmabot/internal/domain"
	applog "pharmabot/internal/log"
	"pharmabot/internal/telegram"
)

// Channel is the outbound messaging capability the dispatcher depends
// on. parseMode distinguishes plain text from MarkdownV2.
type Channel interface {
	Send(ctx context.Context, chatID int64, text, parseMode string) error
}

// Notifier fans out one expiry alert per medicine to the pharmacy chat.
type Notifier struct {
	Channel     Channel
	ChatID      int64
	Workers     int
	SendTimeout time.Duration
}

func NewNotifier(ch Channel, chatID int64, workers int, sendTimeout time.Duration) *Notifier {
	if workers <= 0 {
		workers = 8
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Notifier{Channel: ch, ChatID: chatID, Workers: workers, SendTimeout: sendTimeout}
}

// NotifyExpiring sends one alert per item concurrently, capped at
// Workers in flight. A failed or timed-out send is logged and counted;
// it never cancels the sibling sends.
func (n *Notifier) NotifyExpiring(ctx context.Context, items []domain.Medicine) domain.NotificationReport {
	report := domain.NotificationReport{Attempted: len(items)}
	if len(items) == 0 {
		return report
	}

	today := time.Now().UTC()
	sem := make(chan struct{}, n.Workers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, m := range items {
		wg.Add(1)
		go func(m domain.Medicine) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sctx, cancel := context.WithTimeout(ctx, n.SendTimeout)
			defer cancel()
			err := n.Channel.Send(sctx, n.ChatID, ExpiryAlertText(m, today), telegram.ModeMarkdownV2)

			mu.Lock()
			if err != nil {
				report.Failed++
				report.FailedIDs = append(report.FailedIDs, m.ID)
			} else {
				report.Succeeded++
			}
			mu.Unlock()

			if err != nil {
				applog.Error("notify.send", err, map[string]any{"medicine_id": m.ID, "name": m.Name})
			}
		}(m)
	}
	wg.Wait()
	return report
}

// ExpiryAlertText builds the MarkdownV2 alert for one medicine. The day
// count may be negative when the medicine is already expired.
func ExpiryAlertText(m domain.Medicine, today time.Time) string {
	return fmt.Sprintf(
		"⚠️ *Medicine Expiry Alert*\n\n"+
			"*Name:* `%s`\n"+
			"*Expiry Date:* `%s`\n"+
			"*Days until expiry:* `%d`\n"+
			"*Quantity:* `%d`\n"+
			"Please check and take appropriate action\\.",
		telegram.EscapeMarkdown(m.Name),
		m.Expiry().Format("02-01-2006"),
		m.DaysUntilExpiry(today),
		m.Stock,
	)
}
