package service

import (
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services ERP 服务集合
type Services struct {
	Attribute       *AttributeService
	Order           *OrderService
	BOM             *BOMService
	WorkOrder       *WorkOrderService
	MaterialRequest *MaterialRequestService
}

func NewServices(repos *repository.Repositories, cache *redis.Client, logger *zap.Logger, colorTag, sizeTag string) *Services {
	attr := NewAttributeService(repos.Item, colorTag, sizeTag)
	identity := NewEmployeeIdentityResolver(repos.User)
	return &Services{
		Attribute:       attr,
		Order:           NewOrderService(repos, attr, logger),
		BOM:             NewBOMService(repos, cache, logger),
		WorkOrder:       NewWorkOrderService(repos, identity, logger),
		MaterialRequest: NewMaterialRequestService(repos, logger),
	}
}
