package repository

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type MaterialRequestRepository struct {
	db *gorm.DB
}

func NewMaterialRequestRepository(db *gorm.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: db}
}

func (r *MaterialRequestRepository) Create(mr *entity.MaterialRequest) error {
	return r.db.Create(mr).Error
}

func (r *MaterialRequestRepository) GetByID(id string) (*entity.MaterialRequest, error) {
	var mr entity.MaterialRequest
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&mr).Error
	return &mr, err
}

func (r *MaterialRequestRepository) GetByCode(code string) (*entity.MaterialRequest, error) {
	var mr entity.MaterialRequest
	err := r.db.Where("mr_code = ? AND deleted_at IS NULL", code).First(&mr).Error
	return &mr, err
}

// Delete 物理删除，撤销流程走完后申请单不再保留
func (r *MaterialRequestRepository) Delete(id string) error {
	return r.db.Unscoped().Where("id = ?", id).Delete(&entity.MaterialRequest{}).Error
}
