package repositories

import (
	"database/sql"

	"dobtasks/internal/models"
)

type SettingRepository interface {
	Get() (*models.Setting, error)
	Update(autoApprove bool) error
}

type settingRepository struct {
	DB *sql.DB
}

func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{DB: db}
}

// Get returns the singleton settings row; a missing row reads as the
// default (auto_approve off).
func (r *settingRepository) Get() (*models.Setting, error) {
	s := &models.Setting{}
	err := r.DB.QueryRow(`SELECT id, auto_approve FROM settings ORDER BY id ASC LIMIT 1`).
		Scan(&s.ID, &s.AutoApprove)
	if err == sql.ErrNoRows {
		return &models.Setting{AutoApprove: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingRepository) Update(autoApprove bool) error {
	const q = `
		INSERT INTO settings (id, auto_approve) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET auto_approve = EXCLUDED.auto_approve`
	_, err := r.DB.Exec(q, autoApprove)
	return err
}
