package services_test

import (
	"testing"
	"time"

	"pharmabot/internal/domain"
	"pharmabot/internal/repos"
	"pharmabot/internal/services"
)

func TestScanExpiring_HorizonBoundary(t *testing.T) {
	db := memdb(t)
	today := time.Now().UTC()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(domain.DateLayout) }

	seedMedicine(t, db, 1, "SoonGone", 10, day(10))
	seedMedicine(t, db, 2, "OnTheLine", 10, day(180))
	seedMedicine(t, db, 3, "FarOut", 10, day(200))

	svc := services.NewInventoryService(repos.NewMedicineRepo(db))
	out, err := svc.ScanExpiring(180)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 medicines, got %+v", out)
	}
	// the item expiring exactly at the horizon is included
	ids := map[int64]bool{out[0].ID: true, out[1].ID: true}
	if !ids[1] || !ids[2] {
		t.Fatalf("want ids 1 and 2, got %+v", out)
	}
}

func TestScanExpiring_NoMatchesIsEmpty(t *testing.T) {
	db := memdb(t)
	today := time.Now().UTC()
	seedMedicine(t, db, 1, "Fresh", 10, today.AddDate(1, 0, 0).Format(domain.DateLayout))

	svc := services.NewInventoryService(repos.NewMedicineRepo(db))
	out, err := svc.ScanExpiring(180)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("want empty, got %+v", out)
	}
}

func TestInventoryList(t *testing.T) {
	db := memdb(t)
	seedMedicine(t, db, 1, "Zinc", 10, "2026-01-01")
	seedMedicine(t, db, 2, "Aspirin", 20, "2026-01-01")

	svc := services.NewInventoryService(repos.NewMedicineRepo(db))
	out, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Name != "Aspirin" || out[1].Name != "Zinc" {
		t.Fatalf("want name order, got %+v", out)
	}
}
