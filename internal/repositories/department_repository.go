package repositories

import (
	"database/sql"

	"dobtasks/internal/models"
)

type DepartmentRepository interface {
	Create(dept *models.Department) error
	GetByID(id int64) (*models.Department, error)
	List() ([]models.Department, error)
	Update(dept *models.Department) error
	Delete(id int64) error
}

type departmentRepository struct {
	DB *sql.DB
}

func NewDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &departmentRepository{DB: db}
}

func (r *departmentRepository) Create(dept *models.Department) error {
	err := r.DB.QueryRow(
		`INSERT INTO departments (name) VALUES ($1) RETURNING id`, dept.Name,
	).Scan(&dept.ID)
	return wrapDuplicate(err)
}

func (r *departmentRepository) GetByID(id int64) (*models.Department, error) {
	d := &models.Department{}
	err := r.DB.QueryRow(`SELECT id, name FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *departmentRepository) List() ([]models.Department, error) {
	rows, err := r.DB.Query(`SELECT id, name FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var depts []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

func (r *departmentRepository) Update(dept *models.Department) error {
	_, err := r.DB.Exec(`UPDATE departments SET name=$1 WHERE id=$2`, dept.Name, dept.ID)
	return wrapDuplicate(err)
}

func (r *departmentRepository) Delete(id int64) error {
	// users of a deleted department keep their account with department_id NULL
	_, err := r.DB.Exec(`DELETE FROM departments WHERE id = $1`, id)
	return err
}
