package services

import (
	"time"

	"pharmabot/internal/domain"
	"pharmabot/internal/repos"
)

type InventoryService struct {
	Meds *repos.MedicineRepo
}

func NewInventoryService(meds *repos.MedicineRepo) *InventoryService {
	return &InventoryService{Meds: meds}
}

// List returns the full inventory for display.
func (s *InventoryService) List() ([]domain.Medicine, error) {
	return s.Meds.List()
}

// ScanExpiring returns every medicine expiring within horizonDays of
// today, boundary day included. An empty result is not an error.
func (s *InventoryService) ScanExpiring(horizonDays int) ([]domain.Medicine, error) {
	deadline := time.Now().UTC().AddDate(0, 0, horizonDays).Format(domain.DateLayout)
	return s.Meds.ExpiringOnOrBefore(deadline)
}
