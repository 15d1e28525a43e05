package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"pharmabot/internal/domain"
	"pharmabot/internal/repos"
	"pharmabot/internal/services"
)

// Full tick: a medicine inside the horizon ends up as one alert on the
// channel, with its remaining-day count in the text.
func TestRunExpiryCheck(t *testing.T) {
	db := memdb(t)
	today := time.Now().UTC()
	seedMedicine(t, db, 1, "Aspirin", 25, today.AddDate(0, 0, 10).Format(domain.DateLayout))
	seedMedicine(t, db, 2, "Fresh", 25, today.AddDate(1, 0, 0).Format(domain.DateLayout))

	inv := services.NewInventoryService(repos.NewMedicineRepo(db))
	ch := &fakeChannel{}
	n := services.NewNotifier(ch, 42, 4, time.Second)

	report, err := services.RunExpiryCheck(context.Background(), inv, n, 180)
	if err != nil {
		t.Fatal(err)
	}
	if report.Attempted != 1 || report.Succeeded != 1 {
		t.Fatalf("bad report: %+v", report)
	}
	if len(ch.sent) != 1 {
		t.Fatalf("want 1 alert, got %d", len(ch.sent))
	}
	if !strings.Contains(ch.sent[0], "Aspirin") || !strings.Contains(ch.sent[0], "`10`") {
		t.Fatalf("bad alert text: %s", ch.sent[0])
	}
}

func TestRunExpiryCheck_NothingExpiring(t *testing.T) {
	db := memdb(t)
	today := time.Now().UTC()
	seedMedicine(t, db, 1, "Fresh", 25, today.AddDate(1, 0, 0).Format(domain.DateLayout))

	inv := services.NewInventoryService(repos.NewMedicineRepo(db))
	ch := &fakeChannel{}
	n := services.NewNotifier(ch, 42, 4, time.Second)

	report, err := services.RunExpiryCheck(context.Background(), inv, n, 180)
	if err != nil {
		t.Fatal(err)
	}
	if report.Attempted != 0 || len(ch.sent) != 0 {
		t.Fatalf("unexpected sends: %+v / %v", report, ch.sent)
	}
}
