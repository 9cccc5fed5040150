package service

import (
	"fmt"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"go.uber.org/zap"
)

// MaterialRequestService 物料申请的撤销补偿
type MaterialRequestService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewMaterialRequestService(repos *repository.Repositories, logger *zap.Logger) *MaterialRequestService {
	return &MaterialRequestService{repos: repos, logger: logger}
}

type CancelMaterialRequestResult struct {
	RequestCode             string   `json:"request_code"`
	UpdatedProductionOrders []string `json:"updated_production_orders"`
}

// CancelAndDelete 撤销并删除物料申请。仅待处理状态可撤销；
// 删除后把关联销售订单下已推进的生产订单重置回待处理，返回被重置的订单编号。
func (s *MaterialRequestService) CancelAndDelete(requestID, userID string) (*CancelMaterialRequestResult, error) {
	var result *CancelMaterialRequestResult
	err := s.repos.WithTransaction(func(tx *repository.Repositories) error {
		mr, err := tx.MaterialRequest.GetByID(requestID)
		if err != nil {
			mr, err = tx.MaterialRequest.GetByCode(requestID)
			if err != nil {
				return wrapBizError(FailureReferenceNotFound, err, "物料申请不存在: %s", requestID)
			}
		}
		if mr.Status != entity.MRStatusPending {
			return newBizError(FailureConflict, "仅待处理状态的物料申请可撤销，当前状态: %s", mr.Status)
		}

		if err := tx.MaterialRequest.Delete(mr.ID); err != nil {
			return fmt.Errorf("删除物料申请失败: %w", err)
		}

		result = &CancelMaterialRequestResult{RequestCode: mr.MRCode}
		if mr.SalesOrderCode == "" {
			return nil
		}
		pos, err := tx.Production.ListBySOCode(mr.SalesOrderCode)
		if err != nil {
			return fmt.Errorf("查询关联生产订单失败: %w", err)
		}
		for i := range pos {
			po := &pos[i]
			if po.Status == entity.POStatusPending {
				continue
			}
			po.Status = entity.POStatusPending
			if err := tx.Production.Update(po); err != nil {
				return fmt.Errorf("重置生产订单失败 %s: %w", po.POCode, err)
			}
			result.UpdatedProductionOrders = append(result.UpdatedProductionOrders, po.POCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("物料申请已撤销删除",
		zap.String("request_code", result.RequestCode),
		zap.Int("reset_orders", len(result.UpdatedProductionOrders)),
		zap.String("user_id", userID),
	)
	return result, nil
}
