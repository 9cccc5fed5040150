package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetUserByEmail(email string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *UserRepository) CreateEmployee(e *entity.Employee) error {
	return r.db.Create(e).Error
}

func (r *UserRepository) GetEmployeeByCode(code string) (*entity.Employee, error) {
	var e entity.Employee
	err := r.db.Where("emp_code = ?", code).First(&e).Error
	return &e, err
}
