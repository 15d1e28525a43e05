package repos

import (
	"github.com/jmoiron/sqlx"

	"pharmabot/internal/domain"
)

type MedicineRepo struct{ db *sqlx.DB }

func NewMedicineRepo(db *sqlx.DB) *MedicineRepo { return &MedicineRepo{db: db} }

// ByID returns sql.ErrNoRows when the medicine does not exist.
func (r *MedicineRepo) ByID(id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := r.db.Get(&m, `
		SELECT id, name, stock, expiry_date FROM medicines WHERE id = ?
	`, id)
	return m, err
}

// FirstMatch resolves a medicine by case-insensitive name substring,
// taking the lowest-id match. Returns sql.ErrNoRows when nothing matches.
func (r *MedicineRepo) FirstMatch(name string) (domain.Medicine, error) {
	var m domain.Medicine
	err := r.db.Get(&m, `
		SELECT id, name, stock, expiry_date FROM medicines
		WHERE LOWER(name) LIKE LOWER(?)
		ORDER BY id
		LIMIT 1
	`, "%"+name+"%")
	return m, err
}

func (r *MedicineRepo) List() ([]domain.Medicine, error) {
	var out []domain.Medicine
	err := r.db.Select(&out, `
		SELECT id, name, stock, expiry_date FROM medicines ORDER BY name
	`)
	return out, err
}

// ExpiringOnOrBefore returns every medicine whose expiry date is on or
// before the deadline (domain.DateLayout). The boundary day is included.
func (r *MedicineRepo) ExpiringOnOrBefore(deadline string) ([]domain.Medicine, error) {
	var out []domain.Medicine
	err := r.db.Select(&out, `
		SELECT id, name, stock, expiry_date FROM medicines
		WHERE expiry_date <= ?
		ORDER BY expiry_date, id
	`, deadline)
	return out, err
}
